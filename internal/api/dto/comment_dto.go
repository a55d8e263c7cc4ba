package dto

import (
	"time"

	"github.com/spec-kit/blog-service/internal/domain"
)

// CreateCommentRequest payload. ParentID is stored as given.
type CreateCommentRequest struct {
	ArticleID int64  `json:"articleId" validate:"required,gt=0"`
	Content   string `json:"content" validate:"required,min=1,max=1000"`
	ParentID  *int64 `json:"parentId" validate:"omitempty,gt=0"`
}

// UpdateCommentRequest payload.
type UpdateCommentRequest struct {
	Content *string `json:"content" validate:"omitempty,min=1,max=1000"`
	Status  *string `json:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// CommentAuthorResponse is the public author projection.
type CommentAuthorResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
}

// CommentResponse is the public comment representation.
type CommentResponse struct {
	ID        int64                  `json:"id"`
	Content   string                 `json:"content"`
	ArticleID int64                  `json:"articleId"`
	UserID    int64                  `json:"userId"`
	ParentID  *int64                 `json:"parentId"`
	Status    domain.CommentStatus   `json:"status"`
	Author    *CommentAuthorResponse `json:"author,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		ArticleID: c.ArticleID,
		UserID:    c.UserID,
		ParentID:  c.ParentID,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.Author != nil {
		resp.Author = &CommentAuthorResponse{ID: c.Author.ID, Username: c.Author.Username, Nickname: c.Author.Nickname}
	}
	return resp
}
