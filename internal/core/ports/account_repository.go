package ports

import (
	"context"

	"github.com/colmedica/association-api/internal/core/domain"
)

// AccountUpdate carries a partial admin edit of an account. Tier and
// payment status changes only apply to member-role accounts; the service
// enforces that.
type AccountUpdate struct {
	Name           *string
	IsActive       *bool
	MembershipType *domain.MembershipType
	PaymentStatus  *domain.PaymentStatus
}

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	// Create inserts the account. A duplicate email surfaces as
	// domain.ErrAccountExists (backed by a unique index).
	Create(ctx context.Context, a *domain.Account) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
	Update(ctx context.Context, id string, u AccountUpdate) (*domain.Account, error)
	SetPaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Account, error)
	// SetPassword stores a new hash and clears the one-time plaintext
	// credential.
	SetPassword(ctx context.Context, id, passwordHash string) error
}

// SequenceRepository hands out monotonically increasing values per named
// counter. Used to derive member numbers and one-time credentials.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// TxRunner executes fn inside one all-or-nothing transaction: every store
// write issued through ctx commits together or not at all.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
