package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Provider abstracts the hosted-payment vendor (Paddle today) so the rest
// of the application never touches vendor SDK types. Providers handle the
// card flow through hosted checkouts and customer portals; we only store
// identifiers and react to webhooks.
type Provider interface {
	// CheckoutLink creates a hosted checkout session for the given plan.
	CheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// PortalLink returns a pre-authenticated customer portal URL where the
	// cabinet owner can change the payment method or cancel.
	PortalLink(ctx context.Context, customerID, providerSubID string) (*PortalLink, error)

	// ParseWebhook verifies the signature and normalizes the payload into
	// an Event. A bad signature must fail, never fall through.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*Event, error)
}

// CheckoutRequest describes the checkout session to create. PlanID is the
// provider's price identifier, which doubles as the catalog plan ID.
type CheckoutRequest struct {
	PlanID     string
	CabinetID  uuid.UUID
	Email      string
	SuccessURL string
}

// CheckoutLink is a hosted checkout session.
type CheckoutLink struct {
	URL           string
	TransactionID string
	ExpiresAt     time.Time
}

// PortalLink is a customer portal session.
type PortalLink struct {
	URL              string
	CancelURL        string
	UpdatePaymentURL string
	ExpiresAt        time.Time
}

// EventType is the provider-agnostic webhook event class.
type EventType string

const (
	EventSubscriptionCreated  EventType = "subscription_created"
	EventSubscriptionUpdated  EventType = "subscription_updated"
	EventSubscriptionCanceled EventType = "subscription_canceled"
	EventPaymentSucceeded     EventType = "payment_succeeded"
	EventPaymentFailed        EventType = "payment_failed"
	EventUnknown              EventType = "unknown"
)

// Event is a normalized webhook event. CabinetID round-trips through the
// checkout custom data, so the webhook can be tied back to a tenant without
// keeping a provider-side lookup table.
type Event struct {
	Type          EventType
	ProviderEvent string

	CabinetID     uuid.UUID
	CustomerID    string // provider customer ID (ctm_xxx)
	ProviderSubID string // provider subscription ID (sub_xxx)
	TransactionID string // provider transaction ID (txn_xxx)
	PlanID        string // provider price ID
	Status        string // provider-side subscription status, verbatim

	OccurredAt time.Time
	Raw        map[string]any
}
