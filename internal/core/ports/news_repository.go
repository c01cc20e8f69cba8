package ports

import (
	"context"

	"github.com/colmedica/association-api/internal/core/domain"
)

// ListNewsFilter selects news items for the public listing.
type ListNewsFilter struct {
	Status   domain.NewsStatus
	Category string // empty = all categories
}

// NewsUpdate carries a partial admin edit. Nil fields keep the stored value.
type NewsUpdate struct {
	Title    *string
	Excerpt  *string
	Content  *string
	Category *string
	ImageURL *string
}

// NewsRepository defines persistence operations for news items.
type NewsRepository interface {
	Create(ctx context.Context, n *domain.NewsItem) (*domain.NewsItem, error)
	FindByID(ctx context.Context, id string) (*domain.NewsItem, error)
	// List returns items matching filter ordered by order_index ascending,
	// then created_at descending.
	List(ctx context.Context, filter ListNewsFilter) ([]*domain.NewsItem, error)
	// ListAll returns every item regardless of status, newest first.
	ListAll(ctx context.Context) ([]*domain.NewsItem, error)
	SetStatus(ctx context.Context, id string, status domain.NewsStatus) (*domain.NewsItem, error)
	Update(ctx context.Context, id string, u NewsUpdate) (*domain.NewsItem, error)
	// FindByOrderIndex returns the first item holding index, excluding
	// excludeID, or domain.ErrNewsNotFound.
	FindByOrderIndex(ctx context.Context, index int, excludeID string) (*domain.NewsItem, error)
	SetOrderIndex(ctx context.Context, id string, index int) error
}
