package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

type offeringService struct {
	offerings   ports.OfferingRepository
	enrollments ports.EnrollmentRepository
	log         zerolog.Logger
}

// NewOfferingService returns an OfferingService implementation.
func NewOfferingService(
	offerings ports.OfferingRepository,
	enrollments ports.EnrollmentRepository,
	log zerolog.Logger,
) ports.OfferingService {
	return &offeringService{offerings: offerings, enrollments: enrollments, log: log}
}

func (s *offeringService) Create(ctx context.Context, in ports.CreateOfferingInput) (*domain.Offering, error) {
	now := time.Now().UTC()
	format := in.Format
	if format == "" {
		format = domain.FormatWebinar
	}

	offering := &domain.Offering{
		Title:                strings.TrimSpace(in.Title),
		Description:          strings.TrimSpace(in.Description),
		Content:              strings.TrimSpace(in.Content),
		Instructor:           strings.TrimSpace(in.Instructor),
		DurationHours:        in.DurationHours,
		Format:               format,
		Location:             strings.TrimSpace(in.Location),
		MaxSeats:             in.MaxSeats,
		PriceMember:          in.PriceMember,
		PriceNonMember:       in.PriceNonMember,
		PriceYoung:           in.PriceYoung,
		PriceFree:            in.PriceFree,
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
		RegistrationDeadline: in.RegistrationDeadline,
		IsActive:             in.IsActive,
		ImageURL:             strings.TrimSpace(in.ImageURL),
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	created, err := s.offerings.Create(ctx, offering)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create offering")
		return nil, err
	}

	s.log.Info().Str("offering_id", created.ID).Str("title", created.Title).Msg("offering created")
	return created, nil
}

func (s *offeringService) Update(ctx context.Context, id string, u ports.OfferingUpdate) (*domain.Offering, error) {
	updated, err := s.offerings.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("offering_id", id).Msg("offering updated")
	return updated, nil
}

// Delete removes an offering, refusing while enrollments reference it.
func (s *offeringService) Delete(ctx context.Context, id string) error {
	if _, err := s.offerings.FindByID(ctx, id); err != nil {
		return err
	}
	existing, err := s.enrollments.ListByOffering(ctx, id)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return domain.ErrOfferingHasEnrollments
	}
	if err := s.offerings.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("offering_id", id).Msg("offering deleted")
	return nil
}

func (s *offeringService) SetImage(ctx context.Context, id, imageURL string) (*domain.Offering, error) {
	return s.offerings.Update(ctx, id, ports.OfferingUpdate{ImageURL: &imageURL})
}

// List returns offerings with their enrollment metrics. Anonymous view:
// no caller-specific pricing here, listings always show the full price
// table.
func (s *offeringService) List(ctx context.Context, filter ports.ListOfferingsFilter) ([]ports.OfferingView, error) {
	if filter.Now.IsZero() {
		filter.Now = time.Now().UTC()
	}
	offerings, err := s.offerings.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]ports.OfferingView, 0, len(offerings))
	for _, o := range offerings {
		count, err := s.enrollments.CountActive(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, ports.OfferingView{
			Offering:       o,
			EnrolledCount:  count,
			SeatsLeft:      o.SeatsLeft(count),
			PriceForCaller: o.PriceNonMember,
		})
	}
	return views, nil
}

// Get returns one offering with caller-resolved price and enrollment flag.
func (s *offeringService) Get(ctx context.Context, id string, caller *ports.Caller) (*ports.OfferingView, error) {
	offering, err := s.offerings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.enrollments.CountActive(ctx, offering.ID)
	if err != nil {
		return nil, err
	}

	view := &ports.OfferingView{
		Offering:       offering,
		EnrolledCount:  count,
		SeatsLeft:      offering.SeatsLeft(count),
		PriceForCaller: offering.PriceFor(caller.IsPayingMember(), callerTier(caller)),
	}

	if caller != nil && caller.Email != "" {
		if _, err := s.enrollments.FindActiveByEmail(ctx, offering.ID, strings.ToLower(caller.Email)); err == nil {
			view.IsEnrolled = true
		} else if err != domain.ErrEnrollmentNotFound {
			return nil, err
		}
	}
	return view, nil
}

func callerTier(c *ports.Caller) domain.MembershipType {
	if c == nil {
		return ""
	}
	return c.MembershipType
}
