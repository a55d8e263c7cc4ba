package dto

import (
	"time"

	"github.com/spec-kit/blog-service/internal/domain"
)

// CreateArticleRequest payload.
type CreateArticleRequest struct {
	Title   string  `json:"title" validate:"required,min=1,max=200"`
	Content string  `json:"content" validate:"required"`
	Excerpt *string `json:"excerpt" validate:"omitempty,max=500"`
	Cover   *string `json:"cover" validate:"omitempty,url"`
	Status  string  `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	TagIDs  []int64 `json:"tagIds" validate:"omitempty,dive,gt=0"`
}

// UpdateArticleRequest payload; omitted fields are left unchanged.
type UpdateArticleRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content" validate:"omitempty,min=1"`
	Excerpt *string `json:"excerpt" validate:"omitempty,max=500"`
	Cover   *string `json:"cover" validate:"omitempty,url"`
	Status  *string `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	TagIDs  []int64 `json:"tagIds" validate:"omitempty,dive,gt=0"`
}

// ArticleResponse is the public article representation.
type ArticleResponse struct {
	ID        int64                `json:"id"`
	Title     string               `json:"title"`
	Content   string               `json:"content"`
	Excerpt   *string              `json:"excerpt"`
	Cover     *string              `json:"cover"`
	Status    domain.ArticleStatus `json:"status"`
	Published bool                 `json:"published"`
	PublishAt *time.Time           `json:"publishAt"`
	Views     int64                `json:"views"`
	AuthorID  int64                `json:"authorId"`
	Tags      []TagResponse        `json:"tags"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// ArticleListResponse is one page of articles.
type ArticleListResponse struct {
	Items      []ArticleResponse `json:"items"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
	Total      int64             `json:"total"`
	TotalPages int               `json:"totalPages"`
}

// NewArticleResponse maps a domain article.
func NewArticleResponse(a *domain.Article) ArticleResponse {
	tags := make([]TagResponse, 0, len(a.Tags))
	for i := range a.Tags {
		tags = append(tags, NewTagResponse(&a.Tags[i]))
	}
	return ArticleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Excerpt:   a.Excerpt,
		Cover:     a.Cover,
		Status:    a.Status,
		Published: a.Published,
		PublishAt: a.PublishAt,
		Views:     a.Views,
		AuthorID:  a.AuthorID,
		Tags:      tags,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
