package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

// memberSequence names the counter that member numbers (and the one-time
// credentials derived from them) are drawn from.
const memberSequence = "member_number"

// ApplicationService implements the membership application workflow:
// pending → payment_pending → paid, with pending → rejected terminal.
type ApplicationService struct {
	apps      ports.ApplicationRepository
	accounts  ports.AccountRepository
	sequences ports.SequenceRepository
	tx        ports.TxRunner
	logger    zerolog.Logger
}

func NewApplicationService(
	apps ports.ApplicationRepository,
	accounts ports.AccountRepository,
	sequences ports.SequenceRepository,
	tx ports.TxRunner,
	logger zerolog.Logger,
) *ApplicationService {
	return &ApplicationService{
		apps:      apps,
		accounts:  accounts,
		sequences: sequences,
		tx:        tx,
		logger:    logger,
	}
}

// Submit creates a new application in pending state. Well-formed input
// always succeeds; the requested tier is not recorded — the admin chooses
// it at approval time.
func (s *ApplicationService) Submit(ctx context.Context, in ports.SubmitApplicationInput) (*domain.Application, error) {
	now := time.Now().UTC()
	app := &domain.Application{
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Website:         strings.TrimSpace(in.Website),
		City:            strings.TrimSpace(in.City),
		Country:         strings.TrimSpace(in.Country),
		Whatsapp:        strings.TrimSpace(in.Whatsapp),
		Phone:           strings.TrimSpace(in.Phone),
		Specialization:  strings.TrimSpace(in.Specialization),
		University:      strings.TrimSpace(in.University),
		CurrentHospital: strings.TrimSpace(in.CurrentHospital),
		CurrentPosition: strings.TrimSpace(in.CurrentPosition),
		TeachingDegree:  strings.TrimSpace(in.TeachingDegree),
		Motivation:      strings.TrimSpace(in.Motivation),
		ExperienceYears: in.ExperienceYears,
		MembershipType:  domain.MembershipNormal,
		Status:          domain.ApplicationPending,
		CreatedAt:       now,
	}
	for _, ref := range in.DocumentRefs {
		app.Attachments = append(app.Attachments, domain.Attachment{
			FileRef:   ref,
			CreatedAt: now,
		})
	}

	created, err := s.apps.Create(ctx, app)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create application")
		return nil, err
	}

	s.logger.Info().Str("application_id", created.ID).Str("email", created.Email).Msg("application submitted")
	return created, nil
}

func (s *ApplicationService) List(ctx context.Context) ([]*domain.Application, error) {
	return s.apps.List(ctx)
}

func (s *ApplicationService) Get(ctx context.Context, id string) (*domain.Application, error) {
	return s.apps.FindByID(ctx, id)
}

// Approve moves a pending application to payment_pending, recording the
// admin-chosen membership type. Any other source state fails with
// domain.ErrApplicationResolved.
func (s *ApplicationService) Approve(ctx context.Context, in ports.ApproveApplicationInput) (*domain.Application, error) {
	app, err := s.apps.FindByID(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(domain.ApplicationPaymentPending) {
		return nil, domain.ErrApplicationResolved
	}

	tier := in.MembershipType
	if tier == "" {
		tier = domain.MembershipNormal
	}
	note := in.Note
	if note == "" {
		note = "Approved - awaiting payment"
	}

	updated, err := s.apps.Transition(ctx, app.ID, domain.ApplicationPending, ports.ApplicationDecision{
		Status:         domain.ApplicationPaymentPending,
		MembershipType: tier,
		ResolutionNote: note,
		DecidedAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("application_id", updated.ID).
		Str("membership_type", string(tier)).
		Msg("application approved")
	return updated, nil
}

// Reject moves a pending application to its terminal rejected state.
func (s *ApplicationService) Reject(ctx context.Context, id, note string) (*domain.Application, error) {
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(domain.ApplicationRejected) {
		return nil, domain.ErrApplicationResolved
	}
	if note == "" {
		note = "Rejected"
	}

	updated, err := s.apps.Transition(ctx, app.ID, domain.ApplicationPending, ports.ApplicationDecision{
		Status:         domain.ApplicationRejected,
		MembershipType: app.MembershipType,
		ResolutionNote: note,
		DecidedAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("application_id", updated.ID).Msg("application rejected")
	return updated, nil
}

// ConfirmPayment reconciles the membership fee: the application moves
// payment_pending → paid and a member account is minted with a one-time
// credential, both inside one transaction. The credential is short and
// sequential on purpose — it is displayed to an admin once and rotated on
// the member's first login, so it is a delivery token, not a secret.
func (s *ApplicationService) ConfirmPayment(ctx context.Context, id string) (*ports.ConfirmApplicationResult, error) {
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.ApplicationPaymentPending {
		return nil, domain.ErrApplicationNotPaymentPending
	}

	if _, err := s.accounts.FindByEmail(ctx, app.Email); err == nil {
		return nil, domain.ErrAccountExists
	} else if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	seq, err := s.sequences.Next(ctx, memberSequence)
	if err != nil {
		return nil, fmt.Errorf("mint credential: %w", err)
	}
	oneTime := fmt.Sprintf("soc-%05d", seq)

	hash, err := bcrypt.GenerateFromPassword([]byte(oneTime), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var result ports.ConfirmApplicationResult
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		account := &domain.Account{
			Email:           app.Email,
			Name:            app.Name,
			PasswordHash:    string(hash),
			Role:            domain.RoleMember,
			MembershipType:  app.MembershipType,
			IsActive:        true,
			PaymentStatus:   domain.PaymentPaid,
			InitialPassword: oneTime,
			CreatedAt:       time.Now().UTC(),
		}
		// The unique email index makes this the hard stop against two
		// concurrent confirmations minting two accounts.
		if _, err := s.accounts.Create(txCtx, account); err != nil {
			return err
		}

		updated, err := s.apps.Transition(txCtx, app.ID, domain.ApplicationPaymentPending, ports.ApplicationDecision{
			Status:         domain.ApplicationPaid,
			MembershipType: app.MembershipType,
			ResolutionNote: app.ResolutionNote + "\n\nPayment confirmed - account created",
			DecidedAt:      time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		result = ports.ConfirmApplicationResult{
			Application: updated,
			Credentials: ports.IssuedCredentials{
				Email:          app.Email,
				Password:       oneTime,
				MembershipType: app.MembershipType,
			},
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Str("application_id", app.ID).Msg("payment confirmation failed")
		return nil, err
	}

	s.logger.Info().
		Str("application_id", app.ID).
		Str("email", app.Email).
		Msg("payment confirmed, member account created")
	return &result, nil
}
