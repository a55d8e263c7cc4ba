package dto

import (
	"time"

	"github.com/spec-kit/blog-service/internal/domain"
)

// UserResponse is the public projection of a user; the password hash is
// never serialized.
type UserResponse struct {
	ID            int64             `json:"id"`
	Email         string            `json:"email"`
	Username      string            `json:"username"`
	Nickname      string            `json:"nickname"`
	Avatar        *string           `json:"avatar"`
	Bio           *string           `json:"bio"`
	Role          domain.Role       `json:"role"`
	Status        domain.UserStatus `json:"status"`
	EmailVerified bool              `json:"emailVerified"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// ProfileResponse adds activity counters.
type ProfileResponse struct {
	UserResponse
	Stats ProfileStats `json:"stats"`
}

// ProfileStats counts a user's activity.
type ProfileStats struct {
	PublishedArticles int64 `json:"publishedArticles"`
	Comments          int64 `json:"comments"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Nickname:      u.Nickname,
		Avatar:        u.Avatar,
		Bio:           u.Bio,
		Role:          u.Role,
		Status:        u.Status,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// NewProfileResponse maps a domain profile.
func NewProfileResponse(p *domain.UserProfile) ProfileResponse {
	return ProfileResponse{
		UserResponse: NewUserResponse(&p.User),
		Stats: ProfileStats{
			PublishedArticles: p.PublishedArticles,
			Comments:          p.Comments,
		},
	}
}
