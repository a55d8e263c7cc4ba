//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/persistence"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("blog_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	return pool
}

func TestRepositories_Postgres(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	users := NewUserRepository(pool)
	articles := NewArticleRepository(pool)
	tags := NewTagRepository(pool)
	comments := NewCommentRepository(pool)

	author := &domain.User{
		Email: "author@example.com", Username: "author", PasswordHash: "hash",
		Nickname: "author", Role: domain.RoleUser, Status: domain.UserStatusActive,
	}
	require.NoError(t, users.Create(ctx, author))
	require.NotZero(t, author.ID)

	t.Run("users", func(t *testing.T) {
		dup := &domain.User{
			Email: "author@example.com", Username: "other", PasswordHash: "hash",
			Role: domain.RoleUser, Status: domain.UserStatusActive,
		}
		err := users.Create(ctx, dup)
		require.Error(t, err)
		assert.True(t, apperrors.IsUniqueViolation(err))

		found, err := users.FindByEmailOrUsername(ctx, "nobody@example.com", "author")
		require.NoError(t, err)
		assert.Equal(t, author.ID, found.ID)

		_, err = users.GetByEmail(ctx, "missing@example.com")
		assert.True(t, errors.Is(err, pgx.ErrNoRows))

		bio := "writes things"
		author.Bio = &bio
		author.EmailVerified = true
		require.NoError(t, users.Update(ctx, author))
		reloaded, err := users.GetByID(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, "writes things", *reloaded.Bio)
		assert.True(t, reloaded.EmailVerified)

		assert.True(t, errors.Is(users.Touch(ctx, 999999), pgx.ErrNoRows))
	})

	goTag := &domain.Tag{Name: "go", Color: domain.DefaultTagColor}
	require.NoError(t, tags.Create(ctx, goTag))
	dbTag := &domain.Tag{Name: "databases", Color: "#ff0000"}
	require.NoError(t, tags.Create(ctx, dbTag))

	t.Run("tags", func(t *testing.T) {
		err := tags.Create(ctx, &domain.Tag{Name: "go", Color: domain.DefaultTagColor})
		assert.True(t, apperrors.IsUniqueViolation(err))

		all, err := tags.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "databases", all[0].Name)

		found, err := tags.GetByIDs(ctx, []int64{goTag.ID, 424242})
		require.NoError(t, err)
		assert.Len(t, found, 1)

		none, err := tags.GetByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	now := time.Now()
	article := &domain.Article{
		Title: "Hello", Content: "World", Status: domain.ArticleStatusPublished,
		Published: true, PublishAt: &now, AuthorID: author.ID,
	}
	require.NoError(t, articles.Create(ctx, article, []int64{goTag.ID}))
	draft := &domain.Article{Title: "Draft", Content: "wip", Status: domain.ArticleStatusDraft, AuthorID: author.ID}
	require.NoError(t, articles.Create(ctx, draft, nil))

	t.Run("articles", func(t *testing.T) {
		got, err := articles.GetByID(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, got.Tags, 1)
		assert.Equal(t, "go", got.Tags[0].Name)

		require.NoError(t, articles.IncrementViews(ctx, article.ID))
		got, err = articles.GetByID(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Views)

		got.Title = "Hello again"
		require.NoError(t, articles.Update(ctx, got, []int64{dbTag.ID}))
		got, err = articles.GetByID(ctx, article.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello again", got.Title)
		require.Len(t, got.Tags, 1)
		assert.Equal(t, "databases", got.Tags[0].Name)

		list, total, err := articles.List(ctx, ArticleFilter{Status: domain.ArticleStatusPublished, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		assert.Equal(t, article.ID, list[0].ID)

		_, total, err = articles.List(ctx, ArticleFilter{Status: domain.ArticleStatusPublished, Tag: "go", Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)

		authorID, err := articles.GetAuthorID(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, author.ID, authorID)

		published, commentCount, err := users.CountActivity(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), published)
		assert.Zero(t, commentCount)
	})

	t.Run("comments", func(t *testing.T) {
		first := &domain.Comment{Content: "first", ArticleID: article.ID, UserID: author.ID, Status: domain.CommentStatusApproved}
		require.NoError(t, comments.Create(ctx, first))
		reply := &domain.Comment{Content: "reply", ArticleID: article.ID, UserID: author.ID, ParentID: &first.ID, Status: domain.CommentStatusApproved}
		require.NoError(t, comments.Create(ctx, reply))

		list, err := comments.ListByArticle(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "first", list[0].Content)
		require.NotNil(t, list[0].Author)
		assert.Equal(t, "author", list[0].Author.Username)

		first.Content = "edited"
		require.NoError(t, comments.Update(ctx, first))
		got, err := comments.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Content)

		orphan := &domain.Comment{Content: "x", ArticleID: 999999, UserID: author.ID, Status: domain.CommentStatusApproved}
		assert.Error(t, comments.Create(ctx, orphan))

		require.NoError(t, articles.Delete(ctx, article.ID))
		_, err = comments.GetByID(ctx, first.ID)
		assert.True(t, errors.Is(err, pgx.ErrNoRows))
		assert.True(t, errors.Is(comments.Delete(ctx, first.ID), pgx.ErrNoRows))
		assert.True(t, errors.Is(articles.Delete(ctx, article.ID), pgx.ErrNoRows))
	})
}
