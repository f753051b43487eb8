package subscription

import (
	"math"
	"time"

	"github.com/physiokit/physiokit/modules/catalog"
)

// Entitlement is the answer to "what can this cabinet do right now",
// computed from the stored subscription and plan at an explicit instant.
type Entitlement struct {
	HasSubscription bool `json:"has_subscription"`

	PlanID   string `json:"plan_id,omitempty"`
	PlanName string `json:"plan_name,omitempty"`

	// Status is the derived display status, which can differ from the
	// persisted column (see StatusTrialingWithPaidPlan).
	Status Status `json:"status,omitempty"`

	InTrial       bool `json:"in_trial"`
	TrialDaysLeft int  `json:"trial_days_left"`

	HasPaidPlan  bool `json:"has_paid_plan"`
	InPaidPeriod bool `json:"in_paid_period"`
	PaidDaysLeft int  `json:"paid_days_left"`

	Expired bool `json:"expired"`

	MaxPatients      int64  `json:"max_patients"`
	MaxPatientsLabel string `json:"max_patients_label,omitempty"`
	DaysLeftLabel    string `json:"days_left_label,omitempty"`
}

// DaysLeftCeil counts whole days from now until the deadline, rounding up
// so a few remaining hours still count as one day. Never negative.
func DaysLeftCeil(until, now time.Time) int {
	remaining := until.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// ComputeEntitlement derives the full entitlement snapshot. It is a pure
// function of (subscription, plan, now): no clock reads, no store access,
// safe to call repeatedly.
//
// plan may be nil when the referenced catalog entry has been retired; the
// subscription then confers no paid entitlement.
func ComputeEntitlement(sub *Subscription, plan *catalog.Plan, now time.Time) Entitlement {
	if sub == nil {
		return Entitlement{}
	}

	ent := Entitlement{
		HasSubscription: true,
		PlanID:          sub.PlanID,
	}
	if plan != nil {
		ent.PlanName = plan.Name
		ent.MaxPatients = plan.MaxPatients
		ent.MaxPatientsLabel = catalog.FormatQuota(plan.MaxPatients)
	}

	ent.InTrial = sub.InTrialAt(now)
	if ent.InTrial {
		ent.TrialDaysLeft = DaysLeftCeil(*sub.TrialEnd, now)
	}

	ent.HasPaidPlan = sub.CurrentPeriodStart != nil && sub.CurrentPeriodEnd != nil &&
		plan != nil && !plan.Trial
	ent.InPaidPeriod = ent.HasPaidPlan && sub.InPaidPeriodAt(now)

	switch {
	case ent.InPaidPeriod:
		ent.PaidDaysLeft = DaysLeftCeil(*sub.CurrentPeriodEnd, now)
	case ent.HasPaidPlan && sub.CurrentPeriodStart.After(now):
		// Paid period scheduled after the trial: report the days the
		// cabinet will have once it starts.
		ent.PaidDaysLeft = DaysLeftCeil(*sub.CurrentPeriodEnd, now)
	}

	switch {
	case ent.InTrial && ent.HasPaidPlan:
		ent.Status = StatusTrialingWithPaidPlan
	case ent.InTrial:
		ent.Status = StatusTrialing
	case ent.InPaidPeriod:
		ent.Status = StatusActive
	default:
		ent.Status = sub.Status
	}

	ent.Expired = !ent.InTrial && !ent.InPaidPeriod && sub.Status != StatusCanceled

	switch {
	case ent.InTrial:
		ent.DaysLeftLabel = catalog.FormatDaysLeft(ent.TrialDaysLeft)
	case ent.PaidDaysLeft > 0:
		ent.DaysLeftLabel = catalog.FormatDaysLeft(ent.PaidDaysLeft)
	default:
		ent.DaysLeftLabel = catalog.FormatDaysLeft(0)
	}

	return ent
}
