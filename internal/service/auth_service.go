package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
	"github.com/spec-kit/blog-service/internal/events"
	"github.com/spec-kit/blog-service/internal/repository"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// AuthService coordinates registration, login and credential changes.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenService
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Tokens     *auth.TokenService
	Dispatcher events.Dispatcher
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Email    string
	Username string
	Password string
	Nickname string
}

// ProfileInput carries optional profile changes; nil fields are left as is.
type ProfileInput struct {
	Nickname *string
	Bio      *string
	Avatar   *string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates an ACTIVE USER account and signs its first token pair.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, domain.TokenPair, error) {
	email := normalize(input.Email)
	username := normalize(input.Username)

	existing, err := s.users.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		field := "username"
		if existing.Email == email {
			field = "email"
		}
		return nil, domain.TokenPair{}, userExists(field)
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, domain.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	nickname := strings.TrimSpace(input.Nickname)
	if nickname == "" {
		nickname = username
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Nickname:     nickname,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, domain.TokenPair{}, userExists(conflictField(err))
		}
		return nil, domain.TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.tokens.IssueTokenPair(user)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserRegistered,
		ActorID: user.ID,
		Payload: events.UserRegisteredPayload{UserID: user.ID, Email: user.Email, Username: user.Username},
	})
	return user, pair, nil
}

// Login verifies credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, normalize(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.TokenPair{}, invalidCredentials()
		}
		return nil, domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}

	switch user.Status {
	case domain.UserStatusInactive:
		return nil, domain.TokenPair{}, apperrors.NewUnauthorized(apperrors.CodeAccountInactive, "Account is inactive")
	case domain.UserStatusBanned:
		return nil, domain.TokenPair{}, apperrors.NewForbidden(apperrors.CodeAccountBanned, "Account is banned", nil)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, domain.TokenPair{}, invalidCredentials()
	}

	if err := s.users.Touch(ctx, user.ID); err != nil {
		return nil, domain.TokenPair{}, fmt.Errorf("touch user: %w", err)
	}

	pair, err := s.tokens.IssueTokenPair(user)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return domain.TokenPair{}, apperrors.NewBadRequest(apperrors.CodeRefreshTokenRequired, "Refresh token required", nil)
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		if kind, _ := auth.TokenErrorKindOf(err); kind == auth.TokenExpired {
			return domain.TokenPair{}, apperrors.NewUnauthorized(apperrors.CodeRefreshTokenExpired, "Refresh token expired")
		}
		return domain.TokenPair{}, apperrors.NewUnauthorized(apperrors.CodeInvalidRefreshToken, "Invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TokenPair{}, apperrors.NewUnauthorized(apperrors.CodeUserNotFound, "User not found")
		}
		return domain.TokenPair{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.Status != domain.UserStatusActive {
		return domain.TokenPair{}, apperrors.NewUnauthorized(apperrors.CodeAccountNotActive, "Account is not active")
	}

	return s.tokens.IssueTokenPair(user)
}

// Profile returns the user with activity counters.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	articles, comments, err := s.users.CountActivity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}
	return &domain.UserProfile{User: *user, PublishedArticles: articles, Comments: comments}, nil
}

// UpdateProfile applies the non-nil fields of input.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}
	if input.Nickname != nil {
		user.Nickname = strings.TrimSpace(*input.Nickname)
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}
	if input.Avatar != nil {
		user.Avatar = input.Avatar
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return userLookupError(err)
	}
	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return apperrors.NewBadRequest(apperrors.CodeInvalidCurrentPassword, "Current password is incorrect", nil)
	}
	if currentPassword == newPassword {
		return apperrors.NewBadRequest(apperrors.CodeSamePassword, "New password must differ from the current one", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Logout is a no-op; tokens stay valid until they expire.
func (s *AuthService) Logout(_ context.Context, _ int64) error {
	return nil
}

// SetStatus changes an account's lifecycle state.
func (s *AuthService) SetStatus(ctx context.Context, actorID, userID int64, status domain.UserStatus) (*domain.User, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(status)})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundCode(apperrors.CodeUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	old := user.Status
	if old == status {
		return user, nil
	}
	user.Status = status
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserStatusChanged,
		ActorID: actorID,
		Payload: events.UserStatusChangedPayload{UserID: user.ID, OldStatus: old, NewStatus: status},
	})
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func userExists(field string) error {
	return apperrors.NewBadRequest(apperrors.CodeUserExists, "User already exists", map[string]any{"field": field})
}

func invalidCredentials() error {
	return apperrors.NewBadRequest(apperrors.CodeInvalidCredentials, "Invalid email or password", nil)
}

func userLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewUnauthorized(apperrors.CodeUserNotFound, "User not found")
	}
	return fmt.Errorf("lookup user: %w", err)
}

func conflictField(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.Contains(pgErr.ConstraintName, "username") {
		return "username"
	}
	return "email"
}
