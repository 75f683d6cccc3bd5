package repository

import (
	"context"
	"time"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// PostFilter narrows the base set of a post listing. Zero fields are ignored.
type PostFilter struct {
	AuthorID     uint
	TagID        uint
	FollowedBy   uint // posts whose author this profile follows
	ReactedBy    uint // posts this profile reacted to with Liked
	Liked        bool
	CreatedAfter time.Time
}

func (f PostFilter) apply(db *gorm.DB) *gorm.DB {
	if f.AuthorID != 0 {
		db = db.Where("posts.profile_id = ?", f.AuthorID)
	}
	if f.TagID != 0 {
		db = db.Where("posts.id IN (SELECT post_tags.post_id FROM post_tags WHERE post_tags.tag_id = ?)", f.TagID)
	}
	if f.FollowedBy != 0 {
		db = db.Where("posts.profile_id IN (SELECT follows.following_id FROM follows WHERE follows.follower_id = ?)", f.FollowedBy)
	}
	if f.ReactedBy != 0 {
		db = db.Where("posts.id IN (SELECT reactions.target_id FROM reactions WHERE reactions.target_kind = ? AND reactions.profile_id = ? AND reactions.is_like = ?)",
			string(models.TargetPost), f.ReactedBy, f.Liked)
	}
	if !f.CreatedAfter.IsZero() {
		db = db.Where("posts.created_at >= ?", f.CreatedAfter)
	}
	return db
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Exists(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, filter PostFilter, order string, limit, offset int) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, logger: observability.NewRepoLogger("posts")}
}

// Create inserts the post and links its already-persisted tags.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Tags.*").Create(post).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"post_id": post.ID, "profile_id": post.ProfileID})
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := annotatePosts(readDB(r.db).WithContext(ctx).Model(&models.Post{})).
		Preload("Profile.User").
		Preload("Tags").
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := readDB(r.db).WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List returns one annotated page of the filtered base set and the size of the whole set.
func (r *postRepository) List(ctx context.Context, filter PostFilter, order string, limit, offset int) ([]*models.Post, int64, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "List", "posts")
	defer span.End()
	defer observability.TrackQuery("list", "posts")()

	limit, offset = clampPage(limit, offset)
	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := filter.apply(db.Model(&models.Post{})).Count(&total).Error; err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, 0, err
	}

	var posts []*models.Post
	if total == 0 {
		return posts, 0, nil
	}
	err := filter.apply(annotatePosts(db.Model(&models.Post{}))).
		Preload("Profile.User").
		Preload("Tags").
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, 0, err
	}
	return posts, total, nil
}

// Update writes content and image, and replaces the tag set when tags is non-nil.
func (r *postRepository) Update(ctx context.Context, post *models.Post, tags []models.Tag) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{ID: post.ID}).
			Select("content", "image_url", "updated_at").
			Updates(map[string]any{
				"content":    post.Content,
				"image_url":  post.ImageURL,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE post_id = ?", post.ID).Error; err != nil {
			return err
		}
		for _, tag := range tags {
			if err := tx.Exec("INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)", post.ID, tag.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	r.logger.LogUpdate(ctx, map[string]any{"post_id": post.ID})
	return nil
}

// Delete removes the post with its comments, all reactions on both, and its tag links.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deletePostCascade(tx, tx.Model(&models.Post{}).Select("id").Where("id = ?", id)); err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return err
		}
		r.logger.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	r.logger.LogDelete(ctx, map[string]any{"post_id": id})
	return nil
}

// deletePostCascade removes everything hanging off the posts selected by postIDs
// except the post rows themselves.
func deletePostCascade(tx *gorm.DB, postIDs *gorm.DB) error {
	commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id IN (?)", postIDs)
	if err := deleteReactions(tx, models.TargetComment, commentIDs); err != nil {
		return err
	}
	if err := tx.Where("post_id IN (?)", postIDs).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := deleteReactions(tx, models.TargetPost, postIDs); err != nil {
		return err
	}
	return tx.Exec("DELETE FROM post_tags WHERE post_id IN (?)", postIDs).Error
}
