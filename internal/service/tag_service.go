package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

type TagService struct {
	tagRepo  repository.TagRepository
	pageSize int
}

func NewTagService(tagRepo repository.TagRepository, pageSize int) *TagService {
	return &TagService{tagRepo: tagRepo, pageSize: pageSize}
}

// ListTags lists tags by name. search is a case-insensitive contains match.
func (s *TagService) ListTags(ctx context.Context, search string, page PageParams) (models.Page[*models.Tag], error) {
	page = page.normalize(s.pageSize)
	tags, total, err := s.tagRepo.List(ctx, search, page.Limit, page.Offset)
	if err != nil {
		return models.Page[*models.Tag]{}, models.NewInternalError(err)
	}
	return models.NewPage(tags, total, page.Limit, page.Offset), nil
}

func (s *TagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	return s.tagRepo.GetByID(ctx, id)
}

func (s *TagService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name, err := validation.NormalizeTagName(name)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return s.tagRepo.Create(ctx, name)
}
