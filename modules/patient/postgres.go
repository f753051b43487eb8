package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/physiokit/physiokit/modules/cabinet"
	"github.com/physiokit/physiokit/pkg/pg"
)

// PostgresStore is the pgx-backed Store.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, scope cabinet.Scope, p *Patient) error {
	query := `
		INSERT INTO patients (
			id, cabinet_id, first_name, last_name, email, phone, archived,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.Exec(ctx, query,
		p.ID, scope.CabinetID(), p.FirstName, p.LastName, p.Email, p.Phone, p.Archived,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, scope cabinet.Scope, id uuid.UUID) (*Patient, error) {
	query := `
		SELECT id, cabinet_id, first_name, last_name, email, phone, archived,
		       created_at, updated_at
		FROM patients
		WHERE cabinet_id = $1 AND id = $2
	`
	var p Patient
	err := s.db.QueryRow(ctx, query, scope.CabinetID(), id).Scan(
		&p.ID, &p.CabinetID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Archived,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("select patient: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) Update(ctx context.Context, scope cabinet.Scope, p *Patient) error {
	query := `
		UPDATE patients
		SET first_name = $3, last_name = $4, email = $5, phone = $6,
		    archived = $7, updated_at = $8
		WHERE cabinet_id = $1 AND id = $2
	`
	tag, err := s.db.Exec(ctx, query,
		scope.CabinetID(), p.ID,
		p.FirstName, p.LastName, p.Email, p.Phone, p.Archived, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, scope cabinet.Scope, includeArchived bool) ([]Patient, error) {
	query := `
		SELECT id, cabinet_id, first_name, last_name, email, phone, archived,
		       created_at, updated_at
		FROM patients
		WHERE cabinet_id = $1 AND (NOT archived OR $2)
		ORDER BY archived, created_at DESC
	`
	rows, err := s.db.Query(ctx, query, scope.CabinetID(), includeArchived)
	if err != nil {
		return nil, fmt.Errorf("select patients: %w", err)
	}
	defer rows.Close()

	var out []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(
			&p.ID, &p.CabinetID, &p.FirstName, &p.LastName, &p.Email, &p.Phone, &p.Archived,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CountActive(ctx context.Context, scope cabinet.Scope) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE cabinet_id = $1 AND NOT archived`,
		scope.CabinetID(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return count, nil
}
