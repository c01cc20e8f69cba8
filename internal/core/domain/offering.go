package domain

import (
	"errors"
	"time"
)

// OfferingFormat distinguishes online from on-site offerings.
type OfferingFormat string

const (
	FormatWebinar  OfferingFormat = "webinar"
	FormatInPerson OfferingFormat = "in_person"
)

// EnrollmentPaymentStatus is the payment state of a single enrollment.
type EnrollmentPaymentStatus string

const (
	EnrollmentPending   EnrollmentPaymentStatus = "pending"
	EnrollmentPaid      EnrollmentPaymentStatus = "paid"
	EnrollmentCancelled EnrollmentPaymentStatus = "cancelled"
)

var ErrOfferingNotFound = errors.New("offering not found")
var ErrOfferingInactive = errors.New("offering is not active")
var ErrOfferingHasEnrollments = errors.New("offering has enrollments")
var ErrDeadlinePassed = errors.New("registration deadline has passed")
var ErrCapacityExceeded = errors.New("offering is at capacity")
var ErrDuplicateEnrollment = errors.New("already enrolled in this offering")
var ErrEnrollmentNotFound = errors.New("enrollment not found")
var ErrEnrollmentProcessed = errors.New("enrollment already processed")

// Offering is a scheduled, priced event or course that people enroll in.
type Offering struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Content       string         `json:"content,omitempty"`
	Instructor    string         `json:"instructor,omitempty"`
	DurationHours int            `json:"duration_hours,omitempty"`
	Format        OfferingFormat `json:"format"`
	Location      string         `json:"location,omitempty"`

	// MaxSeats is nil for unlimited capacity.
	MaxSeats *int64 `json:"max_seats,omitempty"`

	// Four price points keyed by audience class.
	PriceMember    float64 `json:"price_member"`
	PriceNonMember float64 `json:"price_non_member"`
	PriceYoung     float64 `json:"price_young"`
	PriceFree      float64 `json:"price_free"`

	StartDate            *time.Time `json:"start_date,omitempty"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty"`

	IsActive  bool      `json:"is_active"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PriceFor resolves the price for an audience class. Pure and total: the
// same inputs always yield the same amount, which is what lets callers
// freeze the result into an enrollment at creation time.
//
// Non-members always pay the non-member price. Young members fall back to
// the normal member price when no young price is set; free-tier members
// pay the free price, or nothing when none is set.
func (o *Offering) PriceFor(isMember bool, tier MembershipType) float64 {
	if !isMember {
		return o.PriceNonMember
	}
	switch tier {
	case MembershipYoung:
		if o.PriceYoung > 0 {
			return o.PriceYoung
		}
		return o.PriceMember
	case MembershipFree:
		if o.PriceFree > 0 {
			return o.PriceFree
		}
		return 0
	default:
		return o.PriceMember
	}
}

// CheckEnrollable is the capacity and deadline guard. nonCancelledCount
// must be the number of enrollments whose payment status is not cancelled
// at the time of the check: pending enrollments hold their seat until
// cancelled, not only once paid.
func (o *Offering) CheckEnrollable(now time.Time, nonCancelledCount int64) error {
	if !o.IsActive {
		return ErrOfferingInactive
	}
	if o.RegistrationDeadline != nil && now.After(*o.RegistrationDeadline) {
		return ErrDeadlinePassed
	}
	if o.MaxSeats != nil && nonCancelledCount >= *o.MaxSeats {
		return ErrCapacityExceeded
	}
	return nil
}

// SeatsLeft returns the remaining capacity, or nil when the offering is
// unbounded. Never negative.
func (o *Offering) SeatsLeft(nonCancelledCount int64) *int64 {
	if o.MaxSeats == nil {
		return nil
	}
	left := *o.MaxSeats - nonCancelledCount
	if left < 0 {
		left = 0
	}
	return &left
}

// Enrollment records a sign-up for an offering. The enrollee's contact
// details and membership standing are denormalized snapshots taken at
// enrollment time; PaymentAmount is the price frozen by the resolver.
type Enrollment struct {
	ID         string `json:"id"`
	OfferingID string `json:"offering_id"`
	// AccountID is empty for anonymous (non-member) enrollees.
	AccountID string `json:"account_id,omitempty"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`

	PaymentStatus  EnrollmentPaymentStatus `json:"payment_status"`
	PaymentAmount  float64                 `json:"payment_amount"`
	MembershipType MembershipType          `json:"membership_type,omitempty"`
	IsMember       bool                    `json:"is_member"`

	EnrolledAt  time.Time  `json:"enrolled_at"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}
