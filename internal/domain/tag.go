package domain

import "time"

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#6366f1"

// Tag labels articles.
type Tag struct {
	ID        int64
	Name      string
	Color     string
	CreatedAt time.Time
}
