package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// ArticlesHandler exposes the /api/articles endpoints.
type ArticlesHandler struct {
	service *service.ArticleService
}

// NewArticlesHandler constructs handler.
func NewArticlesHandler(articleService *service.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{service: articleService}
}

// List GET /api/articles.
func (h *ArticlesHandler) List(c *fiber.Ctx) error {
	viewer, _ := auth.IdentityFromContext(c)
	page, err := h.service.List(c.UserContext(), viewer, service.ArticleListQuery{
		Page:   c.QueryInt("page", 1),
		Size:   c.QueryInt("size", service.DefaultPageSize),
		Tag:    c.Query("tag"),
		Status: domain.ArticleStatus(strings.ToUpper(c.Query("status"))),
	})
	if err != nil {
		return err
	}

	items := make([]dto.ArticleResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.NewArticleResponse(&page.Items[i]))
	}
	return respond(c, http.StatusOK, "Articles retrieved successfully", dto.ArticleListResponse{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	})
}

// Get GET /api/articles/:id.
func (h *ArticlesHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	article, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Article retrieved successfully", dto.NewArticleResponse(article))
}

// Create POST /api/articles.
func (h *ArticlesHandler) Create(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeAuthRequired, "Authentication required")
	}
	var req dto.CreateArticleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	article, err := h.service.Create(c.UserContext(), user.ID, service.ArticleCreateInput{
		Title:   req.Title,
		Content: req.Content,
		Excerpt: req.Excerpt,
		Cover:   req.Cover,
		Status:  domain.ArticleStatus(req.Status),
		TagIDs:  req.TagIDs,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Article created successfully", dto.NewArticleResponse(article))
}

// Update PUT /api/articles/:id.
func (h *ArticlesHandler) Update(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeAuthRequired, "Authentication required")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateArticleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	input := service.ArticleUpdateInput{
		Title:   req.Title,
		Content: req.Content,
		Excerpt: req.Excerpt,
		Cover:   req.Cover,
		TagIDs:  req.TagIDs,
	}
	if req.Status != nil {
		status := domain.ArticleStatus(*req.Status)
		input.Status = &status
	}

	article, err := h.service.Update(c.UserContext(), user.ID, id, input)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Article updated successfully", dto.NewArticleResponse(article))
}

// Delete DELETE /api/articles/:id.
func (h *ArticlesHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Article deleted successfully", nil)
}
