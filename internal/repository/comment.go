package repository

import (
	"context"
	"time"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error)
	ListReplies(ctx context.Context, commentID uint, limit, offset int) ([]*models.Comment, int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, logger: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Profile").Create(comment).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"comment_id": comment.ID, "post_id": comment.PostID})
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := annotateComments(readDB(r.db).WithContext(ctx).Model(&models.Comment{})).
		Preload("Profile.User").
		Where("comments.id = ?", id).
		Take(&comment).Error
	if err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, int64, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("comments.post_id = ? AND comments.reply_to_comment_id IS NULL", postID)
	}, OrderTopComments, limit, offset)
}

func (r *commentRepository) ListReplies(ctx context.Context, commentID uint, limit, offset int) ([]*models.Comment, int64, error) {
	return r.list(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("comments.reply_to_comment_id = ?", commentID)
	}, OrderReplies, limit, offset)
}

func (r *commentRepository) list(ctx context.Context, scope func(*gorm.DB) *gorm.DB, order string, limit, offset int) ([]*models.Comment, int64, error) {
	defer observability.TrackQuery("list", "comments")()

	limit, offset = clampPage(limit, offset)
	db := readDB(r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Comment{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []*models.Comment
	if total == 0 {
		return comments, 0, nil
	}
	err := annotateComments(db.Model(&models.Comment{})).
		Scopes(scope).
		Preload("Profile.User").
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).Model(&models.Comment{ID: comment.ID}).
		Select("content", "updated_at").
		Updates(map[string]any{"content": comment.Content, "updated_at": time.Now()}).Error
	if err != nil {
		r.logger.LogError(ctx, err, "update")
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the comment and its reactions. Direct replies survive as top-level comments.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Comment{}).
			Where("reply_to_comment_id = ?", id).
			Update("reply_to_comment_id", nil).Error; err != nil {
			return err
		}
		if err := deleteReactions(tx, models.TargetComment, []uint{id}); err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", id)
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
	r.logger.LogDelete(ctx, map[string]any{"comment_id": id})
	return nil
}
