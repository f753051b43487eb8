package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/physiokit/physiokit/modules/catalog"
)

// PaymentStatus is the local view of a checkout's progress. The provider is
// the source of truth; rows here exist for support and reconciliation.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment records one checkout attempt for a cabinet.
type Payment struct {
	ID            uuid.UUID
	CabinetID     uuid.UUID
	PlanID        string
	Amount        catalog.Money
	Status        PaymentStatus
	TransactionID string // provider transaction ID, unique

	CreatedAt time.Time
	UpdatedAt time.Time
}
