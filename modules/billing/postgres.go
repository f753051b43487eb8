package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physiokit/physiokit/modules/cabinet"
)

// PostgresPaymentStore is the pgx-backed PaymentStore.
type PostgresPaymentStore struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentStore(db *pgxpool.Pool) *PostgresPaymentStore {
	return &PostgresPaymentStore{db: db}
}

func (s *PostgresPaymentStore) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (
			id, cabinet_id, plan_id,
			amount, currency, status, transaction_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.Exec(ctx, query,
		p.ID, p.CabinetID, p.PlanID,
		p.Amount.Amount, p.Amount.Currency, p.Status, p.TransactionID,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PostgresPaymentStore) SetStatusByTransaction(ctx context.Context, transactionID string, status PaymentStatus, at time.Time) error {
	query := `
		UPDATE payments
		SET status = $2, updated_at = $3
		WHERE transaction_id = $1
	`
	tag, err := s.db.Exec(ctx, query, transactionID, status, at)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (s *PostgresPaymentStore) List(ctx context.Context, scope cabinet.Scope) ([]Payment, error) {
	query := `
		SELECT id, cabinet_id, plan_id,
		       amount, currency, status, transaction_id,
		       created_at, updated_at
		FROM payments
		WHERE cabinet_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, query, scope.CabinetID())
	if err != nil {
		return nil, fmt.Errorf("select payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID, &p.CabinetID, &p.PlanID,
			&p.Amount.Amount, &p.Amount.Currency, &p.Status, &p.TransactionID,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
