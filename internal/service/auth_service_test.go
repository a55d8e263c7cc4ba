package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

func register(t *testing.T, f *fixture, email, username string) *domain.User {
	t.Helper()
	user, _, err := f.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Username: username,
		Password: "Secret123",
	})
	require.NoError(t, err)
	return user
}

func TestAuthService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, pair, err := f.auth.Register(ctx, RegisterInput{
		Email:    "  Alice@Example.COM ",
		Username: "Alice1",
		Password: "Secret123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice1", user.Username)
	assert.Equal(t, "alice1", user.Nickname)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, domain.UserStatusActive, user.Status)
	assert.False(t, user.EmailVerified)
	assert.NotEqual(t, "Secret123", user.PasswordHash)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "Secret123"))
	assert.Equal(t, "1h", pair.ExpiresIn)

	claims, err := f.tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, []events.EventType{events.EventUserRegistered}, f.events.types())

	t.Run("duplicate email", func(t *testing.T) {
		_, _, err := f.auth.Register(ctx, RegisterInput{Email: "ALICE@example.com", Username: "someone", Password: "Secret123"})
		de := assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeUserExists)
		assert.Equal(t, "email", de.Details["field"])
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, _, err := f.auth.Register(ctx, RegisterInput{Email: "new@example.com", Username: "ALICE1", Password: "Secret123"})
		de := assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeUserExists)
		assert.Equal(t, "username", de.Details["field"])
	})

	t.Run("explicit nickname", func(t *testing.T) {
		u, _, err := f.auth.Register(ctx, RegisterInput{Email: "bob@example.com", Username: "bob", Password: "Secret123", Nickname: "Bobby"})
		require.NoError(t, err)
		assert.Equal(t, "Bobby", u.Nickname)
	})
}

func TestAuthService_Login(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := register(t, f, "carol@example.com", "carol")

	got, pair, err := f.auth.Login(ctx, "CAROL@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, _, err = f.auth.Login(ctx, "carol@example.com", "wrong")
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeInvalidCredentials)

	_, _, err = f.auth.Login(ctx, "nobody@example.com", "Secret123")
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeInvalidCredentials)

	user.Status = domain.UserStatusInactive
	require.NoError(t, f.store.Users().Update(ctx, user))
	_, _, err = f.auth.Login(ctx, "carol@example.com", "Secret123")
	assertDomainError(t, err, http.StatusUnauthorized, apperrors.CodeAccountInactive)

	user.Status = domain.UserStatusBanned
	require.NoError(t, f.store.Users().Update(ctx, user))
	_, _, err = f.auth.Login(ctx, "carol@example.com", "Secret123")
	assertDomainError(t, err, http.StatusForbidden, apperrors.CodeAccountBanned)
}

func TestAuthService_Refresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user, pair, err := f.auth.Register(ctx, RegisterInput{Email: "dan@example.com", Username: "dan", Password: "Secret123"})
	require.NoError(t, err)

	fresh, err := f.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := f.tokens.VerifyAccess(fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = f.auth.Refresh(ctx, "")
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeRefreshTokenRequired)

	_, err = f.auth.Refresh(ctx, pair.AccessToken)
	assertDomainError(t, err, http.StatusUnauthorized, apperrors.CodeInvalidRefreshToken)

	ghost, err := f.tokens.IssueTokenPair(&domain.User{ID: 777})
	require.NoError(t, err)
	_, err = f.auth.Refresh(ctx, ghost.RefreshToken)
	assertDomainError(t, err, http.StatusUnauthorized, apperrors.CodeUserNotFound)

	user.Status = domain.UserStatusBanned
	require.NoError(t, f.store.Users().Update(ctx, user))
	_, err = f.auth.Refresh(ctx, pair.RefreshToken)
	assertDomainError(t, err, http.StatusUnauthorized, apperrors.CodeAccountNotActive)
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := register(t, f, "erin@example.com", "erin")

	err := f.auth.ChangePassword(ctx, user.ID, "nope", "Another123")
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeInvalidCurrentPassword)

	err = f.auth.ChangePassword(ctx, user.ID, "Secret123", "Secret123")
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeSamePassword)

	require.NoError(t, f.auth.ChangePassword(ctx, user.ID, "Secret123", "Another123"))
	_, _, err = f.auth.Login(ctx, "erin@example.com", "Another123")
	require.NoError(t, err)
	_, _, err = f.auth.Login(ctx, "erin@example.com", "Secret123")
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeInvalidCredentials)
}

func TestAuthService_ProfileAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := register(t, f, "fay@example.com", "fay")

	_, err := f.articles.Create(ctx, user.ID, ArticleCreateInput{Title: "t", Content: "c", Status: domain.ArticleStatusPublished})
	require.NoError(t, err)
	draft, err := f.articles.Create(ctx, user.ID, ArticleCreateInput{Title: "d", Content: "c"})
	require.NoError(t, err)
	_, err = f.comments.Create(ctx, user.ID, CommentCreateInput{ArticleID: draft.ID, Content: "hi"})
	require.NoError(t, err)

	profile, err := f.auth.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.PublishedArticles)
	assert.Equal(t, int64(1), profile.Comments)

	nickname, bio := "Fay F", "hello"
	updated, err := f.auth.UpdateProfile(ctx, user.ID, ProfileInput{Nickname: &nickname, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Fay F", updated.Nickname)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "hello", *updated.Bio)
	assert.Nil(t, updated.Avatar)

	_, err = f.auth.Profile(ctx, 12345)
	assertDomainError(t, err, http.StatusUnauthorized, apperrors.CodeUserNotFound)

	f.store.Fail(errors.New("db down"))
	defer f.store.Fail(nil)
	_, err = f.auth.Profile(ctx, user.ID)
	assertDomainError(t, err, http.StatusInternalServerError, apperrors.CodeInternal)
}

func TestAuthService_SetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := register(t, f, "gus@example.com", "gus")

	updated, err := f.auth.SetStatus(ctx, 1, user.ID, domain.UserStatusBanned)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusBanned, updated.Status)
	assert.Equal(t, []events.EventType{events.EventUserRegistered, events.EventUserStatusChanged}, f.events.types())

	_, err = f.auth.SetStatus(ctx, 1, user.ID, "FROZEN")
	assertDomainError(t, err, http.StatusBadRequest, apperrors.CodeValidationFailed)

	_, err = f.auth.SetStatus(ctx, 1, 999, domain.UserStatusActive)
	assertDomainError(t, err, http.StatusNotFound, apperrors.CodeUserNotFound)
}
