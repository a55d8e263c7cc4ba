package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// CommentsHandler exposes the /api/comments endpoints.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// Create POST /api/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeAuthRequired, "Authentication required")
	}
	var req dto.CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	comment, err := h.service.Create(c.UserContext(), user.ID, service.CommentCreateInput{
		ArticleID: req.ArticleID,
		Content:   req.Content,
		ParentID:  req.ParentID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Comment created successfully", dto.NewCommentResponse(comment))
}

// ListByArticle GET /api/comments/article/:articleId.
func (h *CommentsHandler) ListByArticle(c *fiber.Ctx) error {
	articleID, err := paramID(c, "articleId")
	if err != nil {
		return err
	}
	comments, err := h.service.ListByArticle(c.UserContext(), articleID)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.NewCommentResponse(&comments[i]))
	}
	return respond(c, http.StatusOK, "Comments retrieved successfully", items)
}

// Update PUT /api/comments/:id.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeAuthRequired, "Authentication required")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	input := service.CommentUpdateInput{Content: req.Content}
	if req.Status != nil {
		status := domain.CommentStatus(*req.Status)
		input.Status = &status
	}
	comment, err := h.service.Update(c.UserContext(), user, id, input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Comment updated successfully", dto.NewCommentResponse(comment))
}

// Delete DELETE /api/comments/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Comment deleted successfully", nil)
}
