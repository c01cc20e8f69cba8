package ports

import (
	"context"

	"github.com/colmedica/association-api/internal/core/domain"
)

// AuthService implements login and credential rotation.
type AuthService interface {
	// Login verifies credentials and returns a signed token with the account.
	Login(ctx context.Context, email, password string) (string, *domain.Account, error)
	// ChangePassword rotates the holder's password and clears any stored
	// one-time credential.
	ChangePassword(ctx context.Context, accountID, current, next string) error
}

// CreateMemberInput is the admin form for directly creating a member
// account. Password is optional; a random one is generated when absent.
type CreateMemberInput struct {
	Email          string
	Name           string
	Password       string
	MembershipType domain.MembershipType
	PaymentStatus  domain.PaymentStatus
}

// CreateAdminInput is the owner-only form for creating admin accounts.
type CreateAdminInput struct {
	Email    string
	Name     string
	Password string
	// CallerEmail must match the configured owner email.
	CallerEmail string
}

// CreatedAccount pairs a new account with its initial plaintext password,
// returned exactly once.
type CreatedAccount struct {
	Account         *domain.Account
	InitialPassword string
}

// AccountService covers account administration.
type AccountService interface {
	List(ctx context.Context) ([]*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
	Update(ctx context.Context, id string, u AccountUpdate) (*domain.Account, error)
	MarkPaid(ctx context.Context, id string) (*domain.Account, error)
	CreateMember(ctx context.Context, in CreateMemberInput) (*CreatedAccount, error)
	CreateAdmin(ctx context.Context, in CreateAdminInput) (*CreatedAccount, error)
}
