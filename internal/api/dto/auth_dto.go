package dto

import "github.com/spec-kit/blog-service/internal/domain"

// RegisterRequest payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Password string `json:"password" validate:"required,min=6,max=128,password"`
	Nickname string `json:"nickname" validate:"omitempty,min=1,max=50"`
}

// LoginRequest payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest payload for POST /api/auth/refresh. Emptiness is reported
// by the service as REFRESH_TOKEN_REQUIRED.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// UpdateProfileRequest payload for PUT /api/auth/profile.
type UpdateProfileRequest struct {
	Nickname *string `json:"nickname" validate:"omitempty,min=1,max=50"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Avatar   *string `json:"avatar" validate:"omitempty,url"`
}

// ChangePasswordRequest payload for PUT /api/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=128,password"`
}

// UpdateUserStatusRequest payload for PATCH /api/users/:id/status.
type UpdateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=ACTIVE INACTIVE BANNED"`
}

// TokenPairResponse carries issued tokens.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// AuthResponse is returned by register and login; tokens sit beside the user.
type AuthResponse struct {
	User UserResponse `json:"user"`
	TokenPairResponse
}

// NewTokenPairResponse maps issued tokens.
func NewTokenPairResponse(pair domain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}
}
