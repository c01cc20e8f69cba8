package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

// ReservationGuard abstracts the short-lived enrollment lease (Redis).
// Acquiring the lease serializes concurrent enroll attempts for the same
// (offering, email) pair before the capacity and duplicate checks run.
type ReservationGuard interface {
	Acquire(ctx context.Context, offeringID, email string) (bool, error)
	Release(ctx context.Context, offeringID, email string) error
}

type enrollmentService struct {
	offerings   ports.OfferingRepository
	enrollments ports.EnrollmentRepository
	guard       ReservationGuard
	log         zerolog.Logger
}

// NewEnrollmentService returns an EnrollmentService implementation.
func NewEnrollmentService(
	offerings ports.OfferingRepository,
	enrollments ports.EnrollmentRepository,
	guard ReservationGuard,
	log zerolog.Logger,
) ports.EnrollmentService {
	return &enrollmentService{
		offerings:   offerings,
		enrollments: enrollments,
		guard:       guard,
		log:         log,
	}
}

// Enroll signs a person up for an offering. Each step is a hard gate:
// the first violation aborts with no partial writes.
func (s *enrollmentService) Enroll(ctx context.Context, in ports.EnrollInput) (*domain.Enrollment, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	// 1. Load the offering.
	offering, err := s.offerings.FindByID(ctx, in.OfferingID)
	if err != nil {
		return nil, err
	}

	// 2. Lease the (offering, email) slot so two concurrent attempts
	// cannot both pass the checks below. Guard outages degrade to the
	// unguarded path rather than blocking enrollments.
	leased, err := s.guard.Acquire(ctx, offering.ID, email)
	if err != nil {
		s.log.Warn().Err(err).Str("offering_id", offering.ID).Msg("reservation guard unavailable, proceeding unguarded")
	} else if !leased {
		return nil, domain.ErrDuplicateEnrollment
	}
	persisted := false
	defer func() {
		if err == nil || persisted {
			return
		}
		if relErr := s.guard.Release(ctx, offering.ID, email); relErr != nil {
			s.log.Warn().Err(relErr).Str("offering_id", offering.ID).Msg("failed to release reservation lease")
		}
	}()

	// 3. Capacity and deadline guard. Pending enrollments hold seats.
	count, err := s.enrollments.CountActive(ctx, offering.ID)
	if err != nil {
		return nil, err
	}
	if err = offering.CheckEnrollable(time.Now().UTC(), count); err != nil {
		return nil, err
	}

	// 4. Duplicate check over non-cancelled enrollments.
	_, err = s.enrollments.FindActiveByEmail(ctx, offering.ID, email)
	if err == nil {
		err = domain.ErrDuplicateEnrollment
		return nil, err
	}
	if err != domain.ErrEnrollmentNotFound {
		return nil, err
	}
	err = nil

	// 5. Audience class from the injected caller snapshot, then freeze
	// the resolved price into the record.
	isMember := in.Caller.IsPayingMember()
	var tier domain.MembershipType
	var accountID string
	if in.Caller != nil && in.Caller.IsActive {
		accountID = in.Caller.AccountID
	}
	if isMember {
		tier = in.Caller.MembershipType
	}

	enrollment := &domain.Enrollment{
		OfferingID:     offering.ID,
		AccountID:      accountID,
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		Phone:          strings.TrimSpace(in.Phone),
		PaymentStatus:  domain.EnrollmentPending,
		PaymentAmount:  offering.PriceFor(isMember, tier),
		MembershipType: tier,
		IsMember:       isMember,
		EnrolledAt:     time.Now().UTC(),
	}

	created, err := s.enrollments.Create(ctx, enrollment)
	if err != nil {
		s.log.Error().Err(err).Str("offering_id", offering.ID).Msg("failed to create enrollment")
		return nil, err
	}
	persisted = true

	s.log.Info().
		Str("enrollment_id", created.ID).
		Str("offering_id", offering.ID).
		Bool("is_member", isMember).
		Float64("amount", created.PaymentAmount).
		Msg("enrollment created")

	return created, nil
}

// ConfirmPayment moves an enrollment pending → paid exactly once.
func (s *enrollmentService) ConfirmPayment(ctx context.Context, enrollmentID string) (*domain.Enrollment, error) {
	enrollment, err := s.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.PaymentStatus != domain.EnrollmentPending {
		return nil, domain.ErrEnrollmentProcessed
	}

	updated, err := s.enrollments.ConfirmPayment(ctx, enrollmentID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("enrollment_id", updated.ID).Msg("enrollment payment confirmed")
	return updated, nil
}

// Roster returns an offering with its full enrollment list, newest first.
func (s *enrollmentService) Roster(ctx context.Context, offeringID string) (*ports.OfferingRoster, error) {
	offering, err := s.offerings.FindByID(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	enrollments, err := s.enrollments.ListByOffering(ctx, offeringID)
	if err != nil {
		return nil, err
	}
	return &ports.OfferingRoster{Offering: offering, Enrollments: enrollments}, nil
}

// ListByAccount returns the caller's enrollments with each offering embedded.
func (s *enrollmentService) ListByAccount(ctx context.Context, accountID string) ([]ports.AccountEnrollment, error) {
	enrollments, err := s.enrollments.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	out := make([]ports.AccountEnrollment, 0, len(enrollments))
	for _, e := range enrollments {
		offering, err := s.offerings.FindByID(ctx, e.OfferingID)
		if err != nil && err != domain.ErrOfferingNotFound {
			return nil, err
		}
		out = append(out, ports.AccountEnrollment{Enrollment: e, Offering: offering})
	}
	return out, nil
}
