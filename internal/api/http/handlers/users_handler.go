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

// UsersHandler exposes admin user management.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// SetStatus PATCH /api/users/:id/status.
func (h *UsersHandler) SetStatus(c *fiber.Ctx) error {
	actor, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeAuthRequired, "Authentication required")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateUserStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.auth.SetStatus(c.UserContext(), actor.ID, id, domain.UserStatus(req.Status))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User status updated successfully", fiber.Map{"user": dto.NewUserResponse(user)})
}
