package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// TagService manages tags.
type TagService struct {
	tags repository.TagRepository
}

// NewTagService constructs the service.
func NewTagService(tags repository.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// List returns all tags by name.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// Create adds a tag; the color defaults to domain.DefaultTagColor.
func (s *TagService) Create(ctx context.Context, name, color string) (*domain.Tag, error) {
	tag := &domain.Tag{
		Name:  strings.TrimSpace(name),
		Color: strings.TrimSpace(color),
	}
	if tag.Color == "" {
		tag.Color = domain.DefaultTagColor
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict(apperrors.CodeTagExists, "Tag already exists", map[string]any{"name": tag.Name})
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return tag, nil
}
