package cabinet

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store persists cabinets. Creation takes a transaction handle so that
// registration can commit cabinet + owner user + trial subscription
// atomically.
type Store interface {
	// CreateTx inserts a cabinet inside the given transaction.
	// Returns ErrCabinetNameTaken on a name conflict.
	CreateTx(ctx context.Context, tx pgx.Tx, c *Cabinet) error

	// Get retrieves a cabinet by ID. Returns ErrCabinetNotFound when absent.
	Get(ctx context.Context, id uuid.UUID) (*Cabinet, error)

	// CompleteOnboarding marks the scoped cabinet's onboarding as done.
	CompleteOnboarding(ctx context.Context, scope Scope) error
}
