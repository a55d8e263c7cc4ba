package dto

import (
	"time"

	"github.com/spec-kit/blog-service/internal/domain"
)

// CreateTagRequest payload.
type CreateTagRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=30"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// TagResponse is the public tag representation.
type TagResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewTagResponse maps a domain tag.
func NewTagResponse(t *domain.Tag) TagResponse {
	return TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, CreatedAt: t.CreatedAt}
}
