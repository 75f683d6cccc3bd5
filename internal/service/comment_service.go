package service

import (
	"context"
	"fmt"

	"agora/internal/models"
	"agora/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
	ReplyTo *uint
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		profileRepo: profileRepo,
	}
}

// CreateComment adds a comment to a post. A reply must target a comment on the same post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}

	author, err := requireProfile(ctx, s.profileRepo, in.UserID)
	if err != nil {
		return nil, err
	}

	exists, err := s.postRepo.Exists(ctx, in.PostID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}

	if in.ReplyTo != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ReplyTo)
		if err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return nil, models.NewValidationError("Reply target does not exist")
			}
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Reply target belongs to another post")
		}
	}

	comment := &models.Comment{
		ProfileID:        author.ID,
		PostID:           in.PostID,
		Content:          in.Content,
		ReplyToCommentID: in.ReplyTo,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	return s.commentRepo.GetByID(ctx, id)
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentLen))
	}
	comment, err := s.ownedComment(ctx, in.UserID, in.CommentID)
	if err != nil {
		return nil, err
	}
	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes the comment and its reactions. Its replies become top-level comments.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.ownedComment(ctx, userID, commentID)
	if err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}

func (s *CommentService) ownedComment(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	actor, err := requireProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.ProfileID != actor.ID {
		return nil, models.NewForbiddenError("You can only change your own comments")
	}
	return comment, nil
}
