package ports

import (
	"context"
	"time"

	"github.com/colmedica/association-api/internal/core/domain"
)

// EnrollmentRepository defines persistence operations for enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, e *domain.Enrollment) (*domain.Enrollment, error)
	FindByID(ctx context.Context, id string) (*domain.Enrollment, error)
	// CountActive counts enrollments for the offering whose payment status
	// is not cancelled. Pending rows count: a seat is held until cancelled.
	CountActive(ctx context.Context, offeringID string) (int64, error)
	// FindActiveByEmail returns the non-cancelled enrollment for the
	// (offering, lower-cased email) pair, or domain.ErrEnrollmentNotFound.
	FindActiveByEmail(ctx context.Context, offeringID, email string) (*domain.Enrollment, error)
	ListByOffering(ctx context.Context, offeringID string) ([]*domain.Enrollment, error)
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Enrollment, error)
	// ConfirmPayment conditionally moves pending → paid, stamping paidAt.
	// A write that matches no pending row returns
	// domain.ErrEnrollmentProcessed.
	ConfirmPayment(ctx context.Context, id string, paidAt time.Time) (*domain.Enrollment, error)
}
