package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository/repotest"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		AccessExpiresIn:  "1h",
		RefreshExpiresIn: "7d",
		AccessTTL:        time.Hour,
		RefreshTTL:       7 * 24 * time.Hour,
		BcryptCost:       4,
	}
}

// recorder captures every published event.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func newRecorder() (*recorder, events.Dispatcher) {
	r := &recorder{}
	d := events.NewInMemoryDispatcher(nil)
	for _, et := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserStatusChanged,
		events.EventArticlePublished,
		events.EventCommentCreated,
	} {
		d.Subscribe(et, func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
	return r, d
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store    *repotest.Store
	tokens   *auth.TokenService
	events   *recorder
	auth     *AuthService
	articles *ArticleService
	comments *CommentService
	tags     *TagService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repotest.NewStore()
	tokens, err := auth.NewTokenService(testAuthConfig())
	require.NoError(t, err)
	rec, dispatcher := newRecorder()

	return &fixture{
		store:  store,
		tokens: tokens,
		events: rec,
		auth: NewAuthService(testAuthConfig(), AuthDependencies{
			UserRepo:   store.Users(),
			Tokens:     tokens,
			Dispatcher: dispatcher,
		}),
		articles: NewArticleService(ArticleDependencies{
			ArticleRepo: store.Articles(),
			TagRepo:     store.Tags(),
			Dispatcher:  dispatcher,
		}),
		comments: NewCommentService(CommentDependencies{
			CommentRepo: store.Comments(),
			ArticleRepo: store.Articles(),
			Dispatcher:  dispatcher,
		}),
		tags: NewTagService(store.Tags()),
	}
}

func assertDomainError(t *testing.T, err error, status int, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	assert.Equal(t, status, de.HTTPStatus, de.Message)
	assert.Equal(t, code, de.Code)
	return de
}

