package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient is a cabinet's patient record. Archived patients are kept for
// history but stop counting against the plan quota.
type Patient struct {
	ID        uuid.UUID
	CabinetID uuid.UUID

	FirstName string
	LastName  string
	Email     string
	Phone     string

	Archived bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName renders "First Last" with whatever parts are present.
func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Input is the caller-supplied part of a patient record.
type Input struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Validate normalizes and checks the input in place.
func (in *Input) Validate() error {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	if in.FirstName == "" && in.LastName == "" {
		return ErrNameRequired
	}
	return nil
}
