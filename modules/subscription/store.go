package subscription

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/physiokit/physiokit/modules/cabinet"
)

// Store persists subscriptions. A cabinet keeps its history; Current is
// always the latest row by creation time.
type Store interface {
	// Current returns the scoped cabinet's current subscription.
	// Returns ErrSubscriptionNotFound when the cabinet has none.
	Current(ctx context.Context, scope cabinet.Scope) (*Subscription, error)

	// CreateTx inserts a subscription inside the given transaction, so
	// registration can commit cabinet + user + subscription atomically.
	CreateTx(ctx context.Context, tx pgx.Tx, sub *Subscription) error

	// Mutate runs fn against the current subscription under a per-row
	// write lock and persists the mutated row in the same transaction.
	// Concurrent writers for the same cabinet serialize on the lock.
	// If fn returns an error the row is left untouched.
	Mutate(ctx context.Context, scope cabinet.Scope, fn func(sub *Subscription) error) (*Subscription, error)
}
