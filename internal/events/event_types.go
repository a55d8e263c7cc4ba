package events

import (
	"time"

	"github.com/spec-kit/blog-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered    EventType = "user_registered"
	EventUserStatusChanged EventType = "user_status_changed"
	EventArticlePublished  EventType = "article_published"
	EventCommentCreated    EventType = "comment_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ActorID   int64     `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// UserStatusChangedPayload payload.
type UserStatusChangedPayload struct {
	UserID    int64             `json:"user_id"`
	OldStatus domain.UserStatus `json:"old_status"`
	NewStatus domain.UserStatus `json:"new_status"`
}

// ArticlePublishedPayload payload.
type ArticlePublishedPayload struct {
	ArticleID int64  `json:"article_id"`
	AuthorID  int64  `json:"author_id"`
	Title     string `json:"title"`
}

// CommentCreatedPayload carries the article author so they can be notified.
type CommentCreatedPayload struct {
	CommentID       int64  `json:"comment_id"`
	ArticleID       int64  `json:"article_id"`
	ArticleAuthorID int64  `json:"article_author_id"`
	BodyPreview     string `json:"body_preview"`
}
