package ports

import (
	"context"
	"time"

	"github.com/colmedica/association-api/internal/core/domain"
)

// CreateOfferingInput carries the admin create form.
type CreateOfferingInput struct {
	Title         string
	Description   string
	Content       string
	Instructor    string
	DurationHours int
	Format        domain.OfferingFormat
	Location      string
	MaxSeats      *int64

	PriceMember    float64
	PriceNonMember float64
	PriceYoung     float64
	PriceFree      float64

	StartDate            *time.Time
	EndDate              *time.Time
	RegistrationDeadline *time.Time

	IsActive bool
	ImageURL string
}

// OfferingView is an offering annotated with computed listing fields.
type OfferingView struct {
	Offering      *domain.Offering
	EnrolledCount int64
	// SeatsLeft is nil for unlimited capacity.
	SeatsLeft *int64
	// PriceForCaller resolves the caller's audience class; non-member
	// price for anonymous callers.
	PriceForCaller float64
	// IsEnrolled is true when the caller holds a non-cancelled enrollment.
	IsEnrolled bool
}

// OfferingService covers offering administration and public views.
type OfferingService interface {
	Create(ctx context.Context, in CreateOfferingInput) (*domain.Offering, error)
	Update(ctx context.Context, id string, u OfferingUpdate) (*domain.Offering, error)
	// Delete refuses with domain.ErrOfferingHasEnrollments while any
	// enrollment references the offering.
	Delete(ctx context.Context, id string) error
	SetImage(ctx context.Context, id, imageURL string) (*domain.Offering, error)
	List(ctx context.Context, filter ListOfferingsFilter) ([]OfferingView, error)
	Get(ctx context.Context, id string, caller *Caller) (*OfferingView, error)
}
