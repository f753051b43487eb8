package cabinet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physiokit/physiokit/pkg/pg"
)

// PostgresStore is the pgx-backed Store implementation.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateTx(ctx context.Context, tx pgx.Tx, c *Cabinet) error {
	query := `
		INSERT INTO cabinets (id, name, type, active, onboarding_done, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Exec(ctx, query,
		c.ID, c.Name, c.Type, c.Active, c.OnboardingDone, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrCabinetNameTaken
		}
		return fmt.Errorf("insert cabinet: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Cabinet, error) {
	query := `
		SELECT id, name, type, active, onboarding_done, created_at, updated_at
		FROM cabinets
		WHERE id = $1
	`
	var c Cabinet
	err := s.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Type, &c.Active, &c.OnboardingDone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrCabinetNotFound
		}
		return nil, fmt.Errorf("select cabinet: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) CompleteOnboarding(ctx context.Context, scope Scope) error {
	query := `
		UPDATE cabinets SET onboarding_done = TRUE, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query, scope.CabinetID())
	if err != nil {
		return fmt.Errorf("update cabinet onboarding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCabinetNotFound
	}
	return nil
}
