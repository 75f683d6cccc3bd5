package repository

import (
	"context"
	"errors"
	"strings"

	"agora/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines the interface for tag operations
type TagRepository interface {
	List(ctx context.Context, search string, limit, offset int) ([]*models.Tag, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Tag, error)
	Create(ctx context.Context, name string) (*models.Tag, error)
	GetOrCreate(ctx context.Context, names []string) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) List(ctx context.Context, search string, limit, offset int) ([]*models.Tag, int64, error) {
	limit, offset = clampPage(limit, offset)
	q := readDB(r.db).WithContext(ctx).Model(&models.Tag{})
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where("name_key LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var tags []*models.Tag
	err := q.Order("name_key ASC, id ASC").Limit(limit).Offset(offset).Find(&tags).Error
	return tags, total, err
}

func (r *tagRepository) GetByID(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := readDB(r.db).WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFoundOr(err, "Tag", id)
	}
	return &tag, nil
}

// Create inserts a new tag; an existing tag with the same case-insensitive name is a conflict.
func (r *tagRepository) Create(ctx context.Context, name string) (*models.Tag, error) {
	tag := &models.Tag{Name: name, NameKey: strings.ToLower(name)}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, models.NewConflictError("Tag already exists", err)
		}
		return nil, models.NewInternalError(err)
	}
	return tag, nil
}

// GetOrCreate resolves names to tags case-insensitively, creating missing ones.
// The first spelling seen wins the display name. Duplicates collapse.
func (r *tagRepository) GetOrCreate(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true

			var tag models.Tag
			err := tx.Where("name_key = ?", key).Take(&tag).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				tag = models.Tag{Name: name, NameKey: key}
				err = tx.Create(&tag).Error
			}
			if err != nil {
				return err
			}
			tags = append(tags, tag)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUniqueViolation
		}
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}
