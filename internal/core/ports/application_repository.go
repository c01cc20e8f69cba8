package ports

import (
	"context"
	"time"

	"github.com/colmedica/association-api/internal/core/domain"
)

// ApplicationDecision carries the fields written by a workflow transition.
type ApplicationDecision struct {
	Status         domain.ApplicationStatus
	MembershipType domain.MembershipType
	ResolutionNote string
	DecidedAt      time.Time
}

// ApplicationRepository defines persistence operations for membership
// applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) (*domain.Application, error)
	FindByID(ctx context.Context, id string) (*domain.Application, error)
	// List returns all applications, newest first.
	List(ctx context.Context) ([]*domain.Application, error)
	// Transition applies a decision conditionally: the write only matches
	// when the application still holds the from status. A write that
	// matches nothing returns domain.ErrApplicationResolved, which is how
	// concurrent double-decisions surface.
	Transition(ctx context.Context, id string, from domain.ApplicationStatus, d ApplicationDecision) (*domain.Application, error)
}
