package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Role is a user's position inside their cabinet.
type Role string

const (
	RoleOwner        Role = "owner"
	RolePractitioner Role = "practitioner"
)

// User is an account belonging to exactly one cabinet.
type User struct {
	ID           uuid.UUID
	CabinetID    uuid.UUID
	Email        string
	PasswordHash []byte
	Role         Role

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail lowercases and validates an email address.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// UserStore persists accounts. Email is globally unique: it is the login
// identifier, so lookup by email is unscoped by design.
type UserStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}
