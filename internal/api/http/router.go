package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/observability"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Articles       *handlers.ArticlesHandler
	Comments       *handlers.CommentsHandler
	Tags           *handlers.TagsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics

	ArticleOwner auth.OwnerLookup
	CommentOwner auth.OwnerLookup

	// RequireVerifiedEmail gates article creation on a verified address.
	RequireVerifiedEmail bool
}

// RegisterRoutes wires HTTP routes. It must run after RegisterMiddlewares.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authn := cfg.AuthMiddleware.Handle
	admin := auth.RequireRole(domain.RoleAdmin)
	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/refresh", cfg.Auth.Refresh)
	authGroup.Get("/info", authn, cfg.Auth.Info)
	authGroup.Put("/profile", authn, cfg.Auth.UpdateProfile)
	authGroup.Put("/password", authn, cfg.Auth.ChangePassword)
	authGroup.Post("/logout", authn, cfg.Auth.Logout)

	createArticle := []fiber.Handler{authn}
	if cfg.RequireVerifiedEmail {
		createArticle = append(createArticle, auth.RequireEmailVerified())
	}
	createArticle = append(createArticle, cfg.Articles.Create)

	articles := api.Group("/articles")
	articles.Get("/", cfg.AuthMiddleware.Optional, cfg.Articles.List)
	articles.Get("/:id", cfg.Articles.Get)
	articles.Post("/", createArticle...)
	articles.Put("/:id", authn, auth.RequireOwnerOrAdmin(cfg.ArticleOwner), cfg.Articles.Update)
	articles.Delete("/:id", authn, auth.RequireOwnerOrAdmin(cfg.ArticleOwner), cfg.Articles.Delete)

	comments := api.Group("/comments")
	comments.Post("/", authn, cfg.Comments.Create)
	comments.Get("/article/:articleId", cfg.Comments.ListByArticle)
	comments.Put("/:id", authn, auth.RequireOwnerOrAdmin(cfg.CommentOwner), cfg.Comments.Update)
	comments.Delete("/:id", authn, auth.RequireOwnerOrAdmin(cfg.CommentOwner), cfg.Comments.Delete)

	tags := api.Group("/tags")
	tags.Get("/", cfg.Tags.List)
	tags.Post("/", authn, admin, cfg.Tags.Create)

	users := api.Group("/users")
	users.Patch("/:id/status", authn, admin, cfg.Users.SetStatus)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFoundCode(apperrors.CodeRouteNotFound, "Route not found")
	})
}
