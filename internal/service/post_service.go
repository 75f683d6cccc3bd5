package service

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/media"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

const (
	maxPostContentLen = 10000
	maxTagsPerPost    = 20
)

type PostService struct {
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
	tagRepo     repository.TagRepository
	media       media.Store
}

type CreatePostInput struct {
	UserID    uint
	Content   string
	Tags      []string
	ImageName string
	Image     []byte
}

// UpdatePostInput carries optional changes. A nil Tags leaves the tag set alone,
// an empty non-nil slice clears it.
type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Content *string
	Tags    []string
}

func NewPostService(
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
	tagRepo repository.TagRepository,
	store media.Store,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		tagRepo:     tagRepo,
		media:       store,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxPostContentLen {
		return nil, models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxPostContentLen))
	}

	author, err := requireProfile(ctx, s.profileRepo, in.UserID)
	if err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ProfileID: author.ID,
		Content:   in.Content,
		Tags:      tags,
	}
	if len(in.Image) > 0 {
		if s.media == nil {
			return nil, models.NewInternalError(fmt.Errorf("media store not configured"))
		}
		ref, err := s.media.Save(ctx, fmt.Sprintf("posts/%d", author.ID), in.ImageName, in.Image)
		if err != nil {
			return nil, err
		}
		post.ImageURL = ref
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.ownedPost(ctx, in.UserID, in.PostID)
	if err != nil {
		return nil, err
	}

	if in.Content != nil {
		if *in.Content == "" {
			return nil, models.NewValidationError("Content is required")
		}
		if len(*in.Content) > maxPostContentLen {
			return nil, models.NewValidationError(fmt.Sprintf("Content too long (max %d characters)", maxPostContentLen))
		}
		post.Content = *in.Content
	}

	var tags []models.Tag
	if in.Tags != nil {
		tags, err = s.resolveTags(ctx, in.Tags)
		if err != nil {
			return nil, err
		}
		if tags == nil {
			tags = []models.Tag{}
		}
	}

	if err := s.postRepo.Update(ctx, post, tags); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes the post with its comments and every reaction on either.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, post.ID)
}

func (s *PostService) ownedPost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	actor, err := requireProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.ProfileID != actor.ID {
		return nil, models.NewForbiddenError("You can only change your own posts")
	}
	return post, nil
}

// resolveTags normalizes names and maps them to stored tags, creating missing ones.
// A concurrent creation of the same tag is retried once.
func (s *PostService) resolveTags(ctx context.Context, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if len(names) > maxTagsPerPost {
		return nil, models.NewValidationError(fmt.Sprintf("Too many tags (max %d)", maxTagsPerPost))
	}

	normalized := make([]string, 0, len(names))
	for _, name := range names {
		n, err := validation.NormalizeTagName(name)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		normalized = append(normalized, n)
	}

	tags, err := s.tagRepo.GetOrCreate(ctx, normalized)
	if errors.Is(err, repository.ErrUniqueViolation) {
		tags, err = s.tagRepo.GetOrCreate(ctx, normalized)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, models.NewConflictError("Tags changed concurrently, please retry", err)
		}
		return nil, err
	}
	return tags, nil
}
