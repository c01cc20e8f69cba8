package ports

import (
	"context"

	"github.com/colmedica/association-api/internal/core/domain"
)

// CreateNewsInput carries a member's news submission. ImageRef is a blob
// store reference already saved by the transport layer.
type CreateNewsInput struct {
	Title    string
	Excerpt  string
	Content  string
	Category string
	ImageRef string
	AuthorID string
}

// ReorderMove is a single drag-and-drop move in a reorder batch.
type ReorderMove struct {
	ID       string
	NewIndex int
}

// NewsService covers editorial operations on news items.
type NewsService interface {
	Create(ctx context.Context, in CreateNewsInput) (*domain.NewsItem, error)
	// ListPublished returns published items, optionally narrowed to a
	// recognized category.
	ListPublished(ctx context.Context, category string) ([]*domain.NewsItem, error)
	// Get returns any item for admins; non-admin callers only see
	// published items.
	Get(ctx context.Context, id string, caller *Caller) (*domain.NewsItem, error)
	ListAll(ctx context.Context) ([]*domain.NewsItem, error)
	Approve(ctx context.Context, id string) (*domain.NewsItem, error)
	Reject(ctx context.Context, id string) (*domain.NewsItem, error)
	Edit(ctx context.Context, id string, u NewsUpdate) (*domain.NewsItem, error)
	// Reorder applies the batch atomically; unknown ids are skipped.
	Reorder(ctx context.Context, moves []ReorderMove) error
}
