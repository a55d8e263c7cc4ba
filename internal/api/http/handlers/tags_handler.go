package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/service"
)

// TagsHandler exposes the /api/tags endpoints.
type TagsHandler struct {
	service *service.TagService
}

// NewTagsHandler constructs handler.
func NewTagsHandler(tagService *service.TagService) *TagsHandler {
	return &TagsHandler{service: tagService}
}

// List GET /api/tags.
func (h *TagsHandler) List(c *fiber.Ctx) error {
	tags, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.TagResponse, 0, len(tags))
	for i := range tags {
		items = append(items, dto.NewTagResponse(&tags[i]))
	}
	return respond(c, http.StatusOK, "Tags retrieved successfully", items)
}

// Create POST /api/tags.
func (h *TagsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTagRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tag, err := h.service.Create(c.UserContext(), req.Name, req.Color)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Tag created successfully", dto.NewTagResponse(tag))
}
