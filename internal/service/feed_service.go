package service

import (
	"context"
	"time"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

// FeedService composes the annotated, ordered and paginated listings of posts and comments.
type FeedService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	profileRepo repository.ProfileRepository
	tagRepo     repository.TagRepository

	recency  time.Duration
	pageSize int
	now      func() time.Time
}

type FeedConfig struct {
	// RecencyWindow bounds the all-posts and followed feeds. Zero disables it.
	RecencyWindow time.Duration
	PageSize      int
}

// TagFeed is a tag with the page of posts carrying it.
type TagFeed struct {
	Tag   *models.Tag               `json:"tag"`
	Posts models.Page[*models.Post] `json:"posts"`
}

func NewFeedService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	profileRepo repository.ProfileRepository,
	tagRepo repository.TagRepository,
	cfg FeedConfig,
) *FeedService {
	return &FeedService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		profileRepo: profileRepo,
		tagRepo:     tagRepo,
		recency:     cfg.RecencyWindow,
		pageSize:    cfg.PageSize,
		now:         time.Now,
	}
}

// AllPosts lists every post inside the recency window, newest first.
func (s *FeedService) AllPosts(ctx context.Context, page PageParams) (models.Page[*models.Post], error) {
	defer observability.TrackFeed("all")()
	return s.posts(ctx, s.recent(repository.PostFilter{}), repository.OrderRecentPosts, page)
}

// FollowedPosts lists posts by the profiles the actor follows, inside the recency window.
func (s *FeedService) FollowedPosts(ctx context.Context, userID uint, page PageParams) (models.Page[*models.Post], error) {
	defer observability.TrackFeed("following")()
	actor, err := requireProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	return s.posts(ctx, s.recent(repository.PostFilter{FollowedBy: actor.ID}), repository.OrderRecentPosts, page)
}

// ProfilePosts lists a profile's posts, most discussed first.
func (s *FeedService) ProfilePosts(ctx context.Context, profileID uint, page PageParams) (models.Page[*models.Post], error) {
	defer observability.TrackFeed("profile")()
	if _, err := s.profileRepo.GetByID(ctx, profileID, 0); err != nil {
		return models.Page[*models.Post]{}, err
	}
	return s.posts(ctx, repository.PostFilter{AuthorID: profileID}, repository.OrderProfilePosts, page)
}

// TagPosts returns the tag with the posts carrying it, least discussed first.
func (s *FeedService) TagPosts(ctx context.Context, tagID uint, page PageParams) (*TagFeed, error) {
	defer observability.TrackFeed("tag")()
	tag, err := s.tagRepo.GetByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts(ctx, repository.PostFilter{TagID: tagID}, repository.OrderTagPosts, page)
	if err != nil {
		return nil, err
	}
	return &TagFeed{Tag: tag, Posts: posts}, nil
}

// ReactedPosts lists the posts the actor liked (like=true) or disliked. No recency window applies.
func (s *FeedService) ReactedPosts(ctx context.Context, userID uint, like bool, page PageParams) (models.Page[*models.Post], error) {
	feed := "disliked"
	if like {
		feed = "liked"
	}
	defer observability.TrackFeed(feed)()
	actor, err := requireProfile(ctx, s.profileRepo, userID)
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	return s.posts(ctx, repository.PostFilter{ReactedBy: actor.ID, Liked: like}, repository.OrderRecentPosts, page)
}

// PostComments lists the top-level comments of a post, most replied first.
func (s *FeedService) PostComments(ctx context.Context, postID uint, page PageParams) (models.Page[*models.Comment], error) {
	defer observability.TrackFeed("comments")()
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return models.Page[*models.Comment]{}, models.NewInternalError(err)
	}
	if !exists {
		return models.Page[*models.Comment]{}, models.NewNotFoundError("Post", postID)
	}

	page = page.normalize(s.pageSize)
	comments, total, err := s.commentRepo.ListTopLevel(ctx, postID, page.Limit, page.Offset)
	if err != nil {
		return models.Page[*models.Comment]{}, models.NewInternalError(err)
	}
	return models.NewPage(comments, total, page.Limit, page.Offset), nil
}

// CommentReplies lists the direct replies of a comment on the given post.
func (s *FeedService) CommentReplies(ctx context.Context, postID, commentID uint, page PageParams) (models.Page[*models.Comment], error) {
	defer observability.TrackFeed("replies")()
	parent, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return models.Page[*models.Comment]{}, err
	}
	if parent.PostID != postID {
		return models.Page[*models.Comment]{}, models.NewNotFoundError("Comment", commentID)
	}

	page = page.normalize(s.pageSize)
	replies, total, err := s.commentRepo.ListReplies(ctx, commentID, page.Limit, page.Offset)
	if err != nil {
		return models.Page[*models.Comment]{}, models.NewInternalError(err)
	}
	return models.NewPage(replies, total, page.Limit, page.Offset), nil
}

func (s *FeedService) recent(filter repository.PostFilter) repository.PostFilter {
	if s.recency > 0 {
		filter.CreatedAfter = s.now().Add(-s.recency)
	}
	return filter
}

func (s *FeedService) posts(ctx context.Context, filter repository.PostFilter, order string, page PageParams) (models.Page[*models.Post], error) {
	page = page.normalize(s.pageSize)
	posts, total, err := s.postRepo.List(ctx, filter, order, page.Limit, page.Offset)
	if err != nil {
		return models.Page[*models.Post]{}, models.NewInternalError(err)
	}
	return models.NewPage(posts, total, page.Limit, page.Offset), nil
}
