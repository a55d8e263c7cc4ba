package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/domain"
)

const (
	// Issuer and Audience are stamped on every token and enforced on verification.
	Issuer   = "blog-api"
	Audience = "blog-users"

	// DefaultExpiringSoonWindow is the threshold used by ExpiringSoon callers.
	DefaultExpiringSoonWindow = 5 * time.Minute
)

// TokenErrorKind classifies verification failures.
type TokenErrorKind int

const (
	TokenInvalid TokenErrorKind = iota + 1
	TokenExpired
	VerificationFailed
)

func (k TokenErrorKind) String() string {
	switch k {
	case TokenInvalid:
		return "invalid"
	case TokenExpired:
		return "expired"
	case VerificationFailed:
		return "verification_failed"
	default:
		return "unknown"
	}
}

// TokenError is returned by VerifyAccess and VerifyRefresh.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// TokenErrorKindOf extracts the kind of a token verification error.
func TokenErrorKindOf(err error) (TokenErrorKind, bool) {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return tokenErr.Kind, true
	}
	return 0, false
}

// AccessClaims describes the access token payload.
type AccessClaims struct {
	UserID   int64       `json:"userId"`
	Email    string      `json:"email"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims describes the refresh token payload.
type RefreshClaims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies access/refresh token pairs. Access and
// refresh tokens are signed with distinct secrets.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	expiresIn     string
	now           func() time.Time
}

// NewTokenService builds the service. Both secrets are mandatory.
func NewTokenService(cfg config.AuthConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("access token: %w", config.ErrMissingSecret)
	}
	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("refresh token: %w", config.ErrMissingSecret)
	}

	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	expiresIn := cfg.AccessExpiresIn
	if expiresIn == "" {
		expiresIn = accessTTL.String()
	}

	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		expiresIn:     expiresIn,
		now:           time.Now,
	}, nil
}

// IssueTokenPair signs a fresh access and refresh token for the user.
func (s *TokenService) IssueTokenPair(user *domain.User) (domain.TokenPair, error) {
	now := s.now()

	access := &AccessClaims{
		UserID:           user.ID,
		Email:            user.Email,
		Username:         user.Username,
		Role:             user.Role,
		RegisteredClaims: s.registered(now, s.accessTTL),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(s.accessSecret)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := &RefreshClaims{
		UserID:           user.ID,
		RegisteredClaims: s.registered(now, s.refreshTTL),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(s.refreshSecret)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    s.expiresIn,
	}, nil
}

// VerifyAccess validates signature, issuer, audience and expiry of an access token.
func (s *TokenService) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenStr, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh validates a refresh token against the refresh secret.
func (s *TokenService) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenStr, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpiringSoon decodes the token without verifying it and reports whether
// it expires within the given window. Undecodable tokens count as expiring.
func (s *TokenService) ExpiringSoon(tokenStr string, within time.Duration) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Sub(s.now()) < within
}

// ExtractBearer returns the token from an "Authorization: Bearer <token>"
// header value. ok is false for empty headers, other schemes, or anything
// that does not split into exactly two space-separated segments.
func ExtractBearer(header string) (token string, ok bool) {
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func (s *TokenService) registered(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func (s *TokenService) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return classify(err)
	}
	if !parsed.Valid {
		return &TokenError{Kind: TokenInvalid, Err: errors.New("invalid token claims")}
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Kind: TokenExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return &TokenError{Kind: TokenInvalid, Err: err}
	default:
		return &TokenError{Kind: VerificationFailed, Err: err}
	}
}
