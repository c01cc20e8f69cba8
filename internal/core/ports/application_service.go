package ports

import (
	"context"

	"github.com/colmedica/association-api/internal/core/domain"
)

// SubmitApplicationInput carries the public submission form.
type SubmitApplicationInput struct {
	Name     string
	Email    string
	Website  string
	City     string
	Country  string
	Whatsapp string
	Phone    string

	Specialization  string
	University      string
	CurrentHospital string
	CurrentPosition string
	TeachingDegree  string
	Motivation      string
	ExperienceYears int

	// DocumentRefs are blob store references already saved by the
	// transport layer; the core never sees raw bytes.
	DocumentRefs []string
}

// ApproveApplicationInput is the admin approval decision.
type ApproveApplicationInput struct {
	ApplicationID  string
	MembershipType domain.MembershipType
	Note           string
}

// IssuedCredentials is the one-time credential bundle returned exactly
// once, when an application's payment is confirmed.
type IssuedCredentials struct {
	Email          string
	Password       string
	MembershipType domain.MembershipType
}

// ConfirmApplicationResult pairs the paid application with the minted
// account credentials.
type ConfirmApplicationResult struct {
	Application *domain.Application
	Credentials IssuedCredentials
}

// ApplicationService drives the membership application workflow.
type ApplicationService interface {
	Submit(ctx context.Context, in SubmitApplicationInput) (*domain.Application, error)
	List(ctx context.Context) ([]*domain.Application, error)
	Get(ctx context.Context, id string) (*domain.Application, error)
	Approve(ctx context.Context, in ApproveApplicationInput) (*domain.Application, error)
	Reject(ctx context.Context, id, note string) (*domain.Application, error)
	ConfirmPayment(ctx context.Context, id string) (*ConfirmApplicationResult, error)
}
