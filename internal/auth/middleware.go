package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

const (
	identityKey = "auth_identity"
	tokenKey    = "auth_token"
)

// AuthMiddleware validates bearer tokens and attaches the current user.
type AuthMiddleware struct {
	tokens *TokenService
	users  repository.UserRepository
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenService, users repository.UserRepository, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := ExtractBearer(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return apperrors.NewUnauthorized(apperrors.CodeNoToken, "Access token required")
	}

	user, err := m.authenticate(c, token)
	if err != nil {
		return err
	}

	c.Locals(identityKey, user)
	c.Locals(tokenKey, token)
	return c.Next()
}

// Optional attaches the identity when a valid token is presented and lets
// the request through unauthenticated otherwise.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	token, ok := ExtractBearer(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return c.Next()
	}

	user, err := m.authenticate(c, token)
	if err != nil {
		m.logger.Debug("optional auth skipped", zap.Error(err))
		return c.Next()
	}

	c.Locals(identityKey, user)
	c.Locals(tokenKey, token)
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx, token string) (*domain.User, error) {
	claims, err := m.tokens.VerifyAccess(token)
	if err != nil {
		kind, _ := TokenErrorKindOf(err)
		switch kind {
		case TokenExpired:
			return nil, apperrors.NewUnauthorized(apperrors.CodeTokenExpired, "Access token expired")
		case TokenInvalid:
			return nil, apperrors.NewUnauthorized(apperrors.CodeInvalidToken, "Invalid access token")
		default:
			return nil, apperrors.NewUnauthorized(apperrors.CodeAuthFailed, "Authentication failed")
		}
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(apperrors.CodeUserNotFound, "User not found")
		}
		return nil, apperrors.NewInternalError(err)
	}

	switch user.Status {
	case domain.UserStatusInactive:
		return nil, apperrors.NewUnauthorized(apperrors.CodeAccountInactive, "Account is inactive")
	case domain.UserStatusBanned:
		return nil, apperrors.NewForbidden(apperrors.CodeAccountBanned, "Account is banned", nil)
	}
	return user, nil
}

// IdentityFromContext returns the authenticated user, if any.
func IdentityFromContext(c *fiber.Ctx) (*domain.User, bool) {
	user, ok := c.Locals(identityKey).(*domain.User)
	return user, ok && user != nil
}

// TokenFromContext returns the raw access token of an authenticated request.
func TokenFromContext(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(tokenKey).(string)
	return token, ok && token != ""
}
