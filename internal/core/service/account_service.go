package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/colmedica/association-api/internal/core/domain"
	"github.com/colmedica/association-api/internal/core/ports"
)

type accountService struct {
	accounts   ports.AccountRepository
	ownerEmail string
	log        zerolog.Logger
}

// NewAccountService returns an AccountService implementation. ownerEmail
// is the only caller allowed to create admin accounts.
func NewAccountService(accounts ports.AccountRepository, ownerEmail string, log zerolog.Logger) ports.AccountService {
	return &accountService{accounts: accounts, ownerEmail: strings.ToLower(ownerEmail), log: log}
}

func (s *accountService) List(ctx context.Context) ([]*domain.Account, error) {
	return s.accounts.List(ctx)
}

func (s *accountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, id)
}

// Update applies a partial edit. Membership tier and payment status only
// apply to member-role accounts.
func (s *accountService) Update(ctx context.Context, id string, u ports.AccountUpdate) (*domain.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Role != domain.RoleMember {
		u.MembershipType = nil
		u.PaymentStatus = nil
	}
	return s.accounts.Update(ctx, id, u)
}

func (s *accountService) MarkPaid(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accounts.SetPaymentStatus(ctx, id, domain.PaymentPaid)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("account_id", id).Msg("membership fee marked paid")
	return account, nil
}

// CreateMember creates a member account directly, bypassing the
// application workflow. Intended for admin back-office use.
func (s *accountService) CreateMember(ctx context.Context, in ports.CreateMemberInput) (*ports.CreatedAccount, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return nil, domain.ErrInvalidCredentials
	}

	password := in.Password
	if password == "" {
		password = randomPassword()
	}
	tier := in.MembershipType
	if tier == "" {
		tier = domain.MembershipNormal
	}
	paymentStatus := in.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = domain.PaymentDue
	}

	created, err := s.create(ctx, email, name, password, domain.RoleMember, tier, paymentStatus)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", created.Account.ID).Str("email", email).Msg("member account created")
	return created, nil
}

// CreateAdmin creates an admin account. Only the configured owner may.
func (s *accountService) CreateAdmin(ctx context.Context, in ports.CreateAdminInput) (*ports.CreatedAccount, error) {
	if s.ownerEmail == "" || strings.ToLower(in.CallerEmail) != s.ownerEmail {
		return nil, domain.ErrForbidden
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.ErrInvalidCredentials
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Admin"
	}
	password := in.Password
	if password == "" {
		password = randomPassword()
	}

	created, err := s.create(ctx, email, name, password, domain.RoleAdmin, "", domain.PaymentPaid)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", created.Account.ID).Str("email", email).Msg("admin account created")
	return created, nil
}

func (s *accountService) create(
	ctx context.Context,
	email, name, password, role string,
	tier domain.MembershipType,
	paymentStatus domain.PaymentStatus,
) (*ports.CreatedAccount, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.Create(ctx, &domain.Account{
		Email:           email,
		Name:            name,
		PasswordHash:    string(hash),
		Role:            role,
		MembershipType:  tier,
		IsActive:        true,
		PaymentStatus:   paymentStatus,
		InitialPassword: password,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return &ports.CreatedAccount{Account: account, InitialPassword: password}, nil
}

// randomPassword returns a short hex password for back-office created
// accounts; the holder is expected to rotate it on first login.
func randomPassword() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte{byte(time.Now().UnixNano())})
	}
	return hex.EncodeToString(b)
}
