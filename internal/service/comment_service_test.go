package service

import (
	"context"
	"strings"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(noopCommentRepo(), noopPostRepo(), noopProfileRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, Content: strings.Repeat("x", maxCommentLen+1)})
		assertValidationError(t, err)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		posts := noopPostRepo()
		posts.existsFn = func(_ context.Context, _ uint) (bool, error) { return false, nil }
		svc := NewCommentService(noopCommentRepo(), posts, noopProfileRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 9, Content: "hi"})
		assertAppError(t, err, models.CodeNotFound)
	})

	t.Run("reply to a comment on another post", func(t *testing.T) {
		t.Parallel()
		comments := noopCommentRepo()
		comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 2}, nil
		}
		svc := NewCommentService(comments, noopPostRepo(), noopProfileRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, Content: "hi", ReplyTo: uintPtr(5)})
		assertValidationError(t, err)
	})

	t.Run("reply to a missing comment", func(t *testing.T) {
		t.Parallel()
		comments := noopCommentRepo()
		comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		svc := NewCommentService(comments, noopPostRepo(), noopProfileRepo())
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, ReplyTo: uintPtr(5)})
		assertValidationError(t, err)
	})

	t.Run("requires a profile", func(t *testing.T) {
		t.Parallel()
		svc := NewCommentService(noopCommentRepo(), noopPostRepo(), withoutProfile(noopProfileRepo()))
		_, err := svc.CreateComment(ctx, CreateCommentInput{UserID: 1, PostID: 1})
		assertAppError(t, err, models.CodeProfileRequired)
	})
}

func TestCommentService_CreateComment_Reply(t *testing.T) {
	t.Parallel()

	var created *models.Comment
	comments := noopCommentRepo()
	comments.createFn = func(_ context.Context, c *models.Comment) error {
		c.ID = 42
		created = c
		return nil
	}
	svc := NewCommentService(comments, noopPostRepo(), noopProfileRepo())

	comment, err := svc.CreateComment(context.Background(), CreateCommentInput{
		UserID:  3,
		PostID:  1,
		Content: "agreed",
		ReplyTo: uintPtr(8),
	})
	require.NoError(t, err)
	assert.Equal(t, uint(42), comment.ID)
	assert.Equal(t, uint(3), created.ProfileID)
	require.NotNil(t, created.ReplyToCommentID)
	assert.Equal(t, uint(8), *created.ReplyToCommentID)
}

func TestCommentService_Ownership(t *testing.T) {
	t.Parallel()

	comments := noopCommentRepo()
	comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		return &models.Comment{ID: id, ProfileID: 10, PostID: 1}, nil
	}
	deleted := false
	comments.deleteFn = func(_ context.Context, _ uint) error {
		deleted = true
		return nil
	}
	svc := NewCommentService(comments, noopPostRepo(), noopProfileRepo())
	ctx := context.Background()

	_, err := svc.UpdateComment(ctx, UpdateCommentInput{UserID: 1, CommentID: 1, Content: "new"})
	assertAppError(t, err, models.CodeForbidden)

	assertAppError(t, svc.DeleteComment(ctx, 1, 1), models.CodeForbidden)
	assert.False(t, deleted)

	require.NoError(t, svc.DeleteComment(ctx, 10, 1))
	assert.True(t, deleted)
}
