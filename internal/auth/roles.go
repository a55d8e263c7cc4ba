package auth

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-service/internal/domain"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// OwnerLookup resolves the owning user id of the resource addressed by the
// route's :id parameter. It returns pgx.ErrNoRows when the resource is absent.
type OwnerLookup func(ctx context.Context, id int64) (int64, error)

// RequireRole admits callers holding one of the given roles.
func RequireRole(roles ...domain.Role) fiber.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	required := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
		required = append(required, string(role))
	}

	return func(c *fiber.Ctx) error {
		user, ok := IdentityFromContext(c)
		if !ok {
			return authRequired()
		}
		if _, exists := allowed[user.Role]; !exists {
			return apperrors.NewForbidden(apperrors.CodeInsufficientPermissions, "Insufficient permissions", map[string]any{
				"required": required,
				"current":  string(user.Role),
			})
		}
		return c.Next()
	}
}

// RequireOwnerOrAdmin admits admins and the owner of the addressed resource.
func RequireOwnerOrAdmin(lookup OwnerLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := IdentityFromContext(c)
		if !ok {
			return authRequired()
		}
		if user.IsAdmin() {
			return c.Next()
		}

		id, err := strconv.ParseInt(c.Params("id"), 10, 64)
		if err != nil || id <= 0 {
			return apperrors.NewBadRequest(apperrors.CodeResourceIDRequired, "Resource id required", nil)
		}

		ownerID, err := lookup(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFound("Resource", nil)
			}
			return apperrors.NewInternalError(err)
		}
		if ownerID != user.ID {
			return apperrors.NewForbidden(apperrors.CodeAccessDenied, "Access denied", nil)
		}
		return c.Next()
	}
}

// RequireEmailVerified admits callers with a verified email address.
func RequireEmailVerified() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := IdentityFromContext(c)
		if !ok {
			return authRequired()
		}
		if !user.EmailVerified {
			return apperrors.NewForbidden(apperrors.CodeEmailVerificationRequired, "Email verification required", nil)
		}
		return c.Next()
	}
}

func authRequired() error {
	return apperrors.NewUnauthorized(apperrors.CodeAuthRequired, "Authentication required")
}
