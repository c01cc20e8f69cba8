package ports

import (
	"context"

	"github.com/colmedica/association-api/internal/core/domain"
)

// Caller is the resolved identity of the requester, injected by the
// transport layer. A nil *Caller means an anonymous request.
type Caller struct {
	AccountID      string
	Email          string
	Role           string
	MembershipType domain.MembershipType
	IsActive       bool
	PaymentStatus  domain.PaymentStatus
}

// IsPayingMember mirrors domain.Account.IsPayingMember for the snapshot.
func (c *Caller) IsPayingMember() bool {
	if c == nil || !c.IsActive {
		return false
	}
	if c.Role == domain.RoleAdmin {
		return true
	}
	return c.Role == domain.RoleMember && c.PaymentStatus == domain.PaymentPaid
}

// EnrollInput carries one enrollment request for a single offering.
type EnrollInput struct {
	OfferingID string
	Name       string
	Email      string
	Phone      string
	Caller     *Caller // nil for anonymous enrollees
}

// OfferingRoster is an offering together with its enrollments.
type OfferingRoster struct {
	Offering    *domain.Offering
	Enrollments []*domain.Enrollment
}

// AccountEnrollment pairs an enrollment with its offering for the
// "my enrollments" view.
type AccountEnrollment struct {
	Enrollment *domain.Enrollment
	Offering   *domain.Offering
}

// EnrollmentService orchestrates sign-ups: duplicate check, capacity and
// deadline guard, price resolution, and record creation.
type EnrollmentService interface {
	Enroll(ctx context.Context, in EnrollInput) (*domain.Enrollment, error)
	ConfirmPayment(ctx context.Context, enrollmentID string) (*domain.Enrollment, error)
	Roster(ctx context.Context, offeringID string) (*OfferingRoster, error)
	ListByAccount(ctx context.Context, accountID string) ([]AccountEnrollment, error)
}
