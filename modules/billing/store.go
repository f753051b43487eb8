package billing

import (
	"context"
	"time"

	"github.com/physiokit/physiokit/modules/cabinet"
)

// PaymentStore persists checkout records.
type PaymentStore interface {
	Create(ctx context.Context, p *Payment) error

	// SetStatusByTransaction updates the payment matching the provider
	// transaction ID. Returns ErrPaymentNotFound when no row matches; the
	// webhook handler treats that as benign (checkout started elsewhere).
	SetStatusByTransaction(ctx context.Context, transactionID string, status PaymentStatus, at time.Time) error

	// List returns the cabinet's payments, newest first.
	List(ctx context.Context, scope cabinet.Scope) ([]Payment, error)
}
