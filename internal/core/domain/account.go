package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// MembershipType classifies a member for price resolution.
type MembershipType string

const (
	MembershipNormal MembershipType = "normal"
	MembershipYoung  MembershipType = "young"
	MembershipFree   MembershipType = "free"
)

// PaymentStatus tracks whether an account's membership fee is settled.
type PaymentStatus string

const (
	PaymentNone PaymentStatus = "none"
	PaymentDue  PaymentStatus = "due"
	PaymentPaid PaymentStatus = "paid"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrAccountExists = errors.New("account already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")

// Account models an authenticated actor: an admin or a paying member.
type Account struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	PasswordHash   string         `json:"-"`
	Role           string         `json:"role"`
	MembershipType MembershipType `json:"membership_type,omitempty"`
	IsActive       bool           `json:"is_active"`
	PaymentStatus  PaymentStatus  `json:"payment_status"`
	// InitialPassword holds the one-time plaintext credential minted on
	// payment confirmation. It is cleared the first time the holder
	// changes their password.
	InitialPassword string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// IsPayingMember reports whether the account qualifies for member pricing:
// active admins always do, members only once their fee is settled.
func (a *Account) IsPayingMember() bool {
	if a == nil || !a.IsActive {
		return false
	}
	if a.Role == RoleAdmin {
		return true
	}
	return a.Role == RoleMember && a.PaymentStatus == PaymentPaid
}
