package cabinet

import (
	"time"

	"github.com/google/uuid"
)

// Type is the practice specialty of a cabinet.
type Type string

const (
	TypeKinesitherapie Type = "kinesitherapie"
	TypeOsteopathie    Type = "osteopathie"
	TypeSport          Type = "sport"
	TypePediatrie      Type = "pediatrie"
	TypeMixte          Type = "mixte"
)

// Valid reports whether t is a known cabinet type.
func (t Type) Valid() bool {
	switch t {
	case TypeKinesitherapie, TypeOsteopathie, TypeSport, TypePediatrie, TypeMixte:
		return true
	}
	return false
}

// Cabinet is one customer organization (tenant). Every domain record is
// scoped to a cabinet; the unique name doubles as the public identity.
type Cabinet struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Type           Type      `json:"type"`
	Active         bool      `json:"active"`
	OnboardingDone bool      `json:"onboarding_done"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
