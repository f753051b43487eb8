package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Status is the persisted lifecycle state of a subscription.
//
// The stored value is a transactionally-maintained cache: it is rewritten in
// the same transaction as any date-field change and entitlement checks derive
// the effective state from the date windows, falling back to the stored
// status only when neither window is current.
type Status string

const (
	StatusTrialing Status = "trialing"
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
	StatusCanceled Status = "canceled"

	// StatusTrialingWithPaidPlan is a display-only label for a live trial
	// with a paid period already scheduled. Never persisted.
	StatusTrialingWithPaidPlan Status = "trialing_with_paid_plan"
)

// Subscription ties a cabinet to a plan and carries the trial and paid
// period windows. A cabinet keeps its full subscription history; the row
// with the latest CreatedAt is the current one.
type Subscription struct {
	ID        uuid.UUID
	CabinetID uuid.UUID
	PlanID    string
	Status    Status

	TrialStart *time.Time
	TrialEnd   *time.Time

	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time

	CancelAtPeriodEnd bool

	// Billing-provider identifiers used to reconcile with the provider's
	// own subscription object (ctm_xxx / sub_xxx for Paddle).
	ProviderCustomerID string
	ProviderSubID      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InTrialAt reports whether the trial window covers the given instant.
// The end boundary is exclusive: a trial ending exactly now is over.
func (s *Subscription) InTrialAt(now time.Time) bool {
	return s.TrialStart != nil && s.TrialEnd != nil && s.TrialEnd.After(now)
}

// PaidPeriodStartedAt reports whether a paid period exists and has begun.
func (s *Subscription) PaidPeriodStartedAt(now time.Time) bool {
	return s.CurrentPeriodStart != nil && !s.CurrentPeriodStart.After(now)
}

// InPaidPeriodAt reports whether the paid window covers the given instant.
func (s *Subscription) InPaidPeriodAt(now time.Time) bool {
	return s.PaidPeriodStartedAt(now) && s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.After(now)
}

// IsCanceled reports whether the subscription was explicitly canceled.
func (s *Subscription) IsCanceled() bool {
	return s.Status == StatusCanceled
}
