package domain

import "time"

// CommentStatus enumerates moderation states.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "PENDING"
	CommentStatusApproved CommentStatus = "APPROVED"
	CommentStatusRejected CommentStatus = "REJECTED"
)

// Comment is a reader comment on an article. ParentID is stored but not
// interpreted; replies are not threaded.
type Comment struct {
	ID        int64
	Content   string
	ArticleID int64
	UserID    int64
	ParentID  *int64
	Status    CommentStatus
	Author    *CommentAuthor
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CommentAuthor is the public projection of a comment's user.
type CommentAuthor struct {
	ID       int64
	Username string
	Nickname string
}
