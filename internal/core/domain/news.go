package domain

import (
	"errors"
	"time"
)

// NewsStatus represents the editorial state of a news item.
type NewsStatus string

const (
	NewsPending   NewsStatus = "pending"
	NewsPublished NewsStatus = "published"
	NewsRejected  NewsStatus = "rejected"
)

// News categories recognized by the public listing filter.
const (
	CategoryAnnouncements = "comunicados"
	CategoryPress         = "prensa"
	CategoryBlog          = "blog"
)

var ErrNewsNotFound = errors.New("news item not found")

// NewsItem is an editorial entry. OrderIndex positions the item within its
// listing; the reorder reconciler keeps indices distinct after moves.
type NewsItem struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Excerpt    string     `json:"excerpt,omitempty"`
	Content    string     `json:"content,omitempty"`
	ImageURL   string     `json:"image_url,omitempty"`
	Status     NewsStatus `json:"status"`
	OrderIndex int        `json:"order_index"`
	Category   string     `json:"category"`
	AuthorID   string     `json:"author_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ValidCategory reports whether c is one of the recognized categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryAnnouncements, CategoryPress, CategoryBlog:
		return true
	}
	return false
}
