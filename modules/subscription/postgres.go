package subscription

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/pkg/pg"
)

const subscriptionColumns = `
	id, cabinet_id, plan_id, status,
	trial_start, trial_end,
	current_period_start, current_period_end,
	cancel_at_period_end,
	provider_customer_id, provider_sub_id,
	created_at, updated_at`

// PostgresStore is the pgx-backed Store implementation.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Current(ctx context.Context, scope cabinet.Scope) (*Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE cabinet_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	sub, err := scanSubscription(s.db.QueryRow(ctx, query, scope.CabinetID()))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("select current subscription: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) CreateTx(ctx context.Context, tx pgx.Tx, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := tx.Exec(ctx, query,
		sub.ID, sub.CabinetID, sub.PlanID, sub.Status,
		sub.TrialStart, sub.TrialEnd,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd,
		sub.ProviderCustomerID, sub.ProviderSubID,
		sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// Mutate locks the current subscription row with SELECT ... FOR UPDATE so
// concurrent upgrade/cancel/webhook writers for the same cabinet serialize
// instead of last-writer-wins clobbering each other.
func (s *PostgresStore) Mutate(ctx context.Context, scope cabinet.Scope, fn func(sub *Subscription) error) (*Subscription, error) {
	var result *Subscription

	err := pg.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		query := `
			SELECT ` + subscriptionColumns + `
			FROM subscriptions
			WHERE cabinet_id = $1
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE
		`
		sub, err := scanSubscription(tx.QueryRow(ctx, query, scope.CabinetID()))
		if err != nil {
			if pg.IsNotFoundError(err) {
				return ErrSubscriptionNotFound
			}
			return fmt.Errorf("select subscription for update: %w", err)
		}

		if err := fn(sub); err != nil {
			return err
		}

		update := `
			UPDATE subscriptions SET
				plan_id = $2, status = $3,
				trial_start = $4, trial_end = $5,
				current_period_start = $6, current_period_end = $7,
				cancel_at_period_end = $8,
				provider_customer_id = $9, provider_sub_id = $10,
				updated_at = $11
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, update,
			sub.ID, sub.PlanID, sub.Status,
			sub.TrialStart, sub.TrialEnd,
			sub.CurrentPeriodStart, sub.CurrentPeriodEnd,
			sub.CancelAtPeriodEnd,
			sub.ProviderCustomerID, sub.ProviderSubID,
			sub.UpdatedAt,
		); err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}

		result = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func scanSubscription(row pgx.Row) (*Subscription, error) {
	var sub Subscription
	err := row.Scan(
		&sub.ID, &sub.CabinetID, &sub.PlanID, &sub.Status,
		&sub.TrialStart, &sub.TrialEnd,
		&sub.CurrentPeriodStart, &sub.CurrentPeriodEnd,
		&sub.CancelAtPeriodEnd,
		&sub.ProviderCustomerID, &sub.ProviderSubID,
		&sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
