package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/service"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// HeaderTokenExpiringSoon is set on /api/auth/info when the presented access
// token is close to expiry.
const HeaderTokenExpiringSoon = "X-Token-Expiring-Soon"

// AuthHandler exposes the /api/auth endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	tokens *auth.TokenService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{auth: authService, tokens: tokens}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, pair, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "User registered successfully", dto.AuthResponse{
		User:              dto.NewUserResponse(user),
		TokenPairResponse: dto.NewTokenPairResponse(pair),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, pair, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Login successful", dto.AuthResponse{
		User:              dto.NewUserResponse(user),
		TokenPairResponse: dto.NewTokenPairResponse(pair),
	})
}

// Refresh handles POST /api/auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body", nil)
	}

	pair, err := h.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Token refreshed successfully", dto.NewTokenPairResponse(pair))
}

// Info handles GET /api/auth/info.
func (h *AuthHandler) Info(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeAuthRequired, "Authentication required")
	}

	profile, err := h.auth.Profile(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	if token, ok := auth.TokenFromContext(c); ok && h.tokens.ExpiringSoon(token, auth.DefaultExpiringSoonWindow) {
		c.Set(HeaderTokenExpiringSoon, "true")
	}
	return respond(c, http.StatusOK, "Profile retrieved successfully", fiber.Map{"user": dto.NewProfileResponse(profile)})
}

// UpdateProfile handles PUT /api/auth/profile.
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeAuthRequired, "Authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	updated, err := h.auth.UpdateProfile(c.UserContext(), user.ID, service.ProfileInput{
		Nickname: req.Nickname,
		Bio:      req.Bio,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profile updated successfully", fiber.Map{"user": dto.NewUserResponse(updated)})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeAuthRequired, "Authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.UserContext(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password changed successfully", nil)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeAuthRequired, "Authentication required")
	}
	if err := h.auth.Logout(c.UserContext(), user.ID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}
