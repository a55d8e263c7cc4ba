package domain

import "time"

// ArticleStatus enumerates editorial states.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "DRAFT"
	ArticleStatusPublished ArticleStatus = "PUBLISHED"
	ArticleStatusArchived  ArticleStatus = "ARCHIVED"
)

// Valid reports whether s is a known status.
func (s ArticleStatus) Valid() bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPublished, ArticleStatusArchived:
		return true
	}
	return false
}

// Article is a blog post. Published is true iff Status is PUBLISHED.
type Article struct {
	ID        int64
	Title     string
	Content   string
	Excerpt   *string
	Cover     *string
	Status    ArticleStatus
	Published bool
	PublishAt *time.Time
	Views     int64
	AuthorID  int64
	Tags      []Tag
	CreatedAt time.Time
	UpdatedAt time.Time
}
