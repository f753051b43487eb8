package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physiokit/physiokit/pkg/pg"
)

// PostgresUserStore is the pgx-backed UserStore.
type PostgresUserStore struct {
	db *pgxpool.Pool
}

func NewPostgresUserStore(db *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) CreateTx(ctx context.Context, tx pgx.Tx, u *User) error {
	query := `
		INSERT INTO users (id, cabinet_id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := tx.Exec(ctx, query,
		u.ID, u.CabinetID, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrEmailAlreadyInUse
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.get(ctx, `WHERE email = $1`, email)
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.get(ctx, `WHERE id = $1`, id)
}

func (s *PostgresUserStore) get(ctx context.Context, where string, arg any) (*User, error) {
	query := `
		SELECT id, cabinet_id, email, password_hash, role, created_at, updated_at
		FROM users ` + where

	var u User
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.CabinetID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}
