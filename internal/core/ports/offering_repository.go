package ports

import (
	"context"
	"time"

	"github.com/colmedica/association-api/internal/core/domain"
)

// ListOfferingsFilter carries the public listing query parameters.
type ListOfferingsFilter struct {
	// Format filters by offering format when non-empty.
	Format domain.OfferingFormat
	// Past selects offerings whose start date is before Now (newest
	// first); otherwise active upcoming offerings are returned (soonest
	// first, undated ones included).
	Past bool
	Now  time.Time
}

// OfferingUpdate carries a partial admin edit. Nil fields keep the stored
// value.
type OfferingUpdate struct {
	Title         *string
	Description   *string
	Content       *string
	Instructor    *string
	DurationHours *int
	Format        *domain.OfferingFormat
	Location      *string
	MaxSeats      *int64
	ClearMaxSeats bool

	PriceMember    *float64
	PriceNonMember *float64
	PriceYoung     *float64
	PriceFree      *float64

	StartDate            *time.Time
	EndDate              *time.Time
	RegistrationDeadline *time.Time

	IsActive *bool
	ImageURL *string
}

// OfferingRepository defines persistence operations for offerings.
type OfferingRepository interface {
	Create(ctx context.Context, o *domain.Offering) (*domain.Offering, error)
	FindByID(ctx context.Context, id string) (*domain.Offering, error)
	List(ctx context.Context, filter ListOfferingsFilter) ([]*domain.Offering, error)
	Update(ctx context.Context, id string, u OfferingUpdate) (*domain.Offering, error)
	Delete(ctx context.Context, id string) error
}
