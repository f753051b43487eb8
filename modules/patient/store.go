package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/physiokit/physiokit/modules/cabinet"
)

// Store persists patient records. Every call is tenant-scoped.
type Store interface {
	Create(ctx context.Context, scope cabinet.Scope, p *Patient) error
	Get(ctx context.Context, scope cabinet.Scope, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, scope cabinet.Scope, p *Patient) error

	// List returns the cabinet's patients, active first, newest first.
	List(ctx context.Context, scope cabinet.Scope, includeArchived bool) ([]Patient, error)

	// CountActive counts non-archived patients, the number the plan quota
	// is checked against.
	CountActive(ctx context.Context, scope cabinet.Scope) (int64, error)
}
