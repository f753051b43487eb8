package catalog

import (
	"fmt"
	"time"
)

// Unlimited marks a quota without a cap (-1 kept for SQL and wire
// compatibility).
const Unlimited int64 = -1

// Feature is a plan capability toggle.
type Feature string

const (
	FeatureAgenda        Feature = "agenda"
	FeatureBilling       Feature = "billing"
	FeatureTreatmentPlan Feature = "treatment_plans"
	FeatureExport        Feature = "export"
	FeatureStatistics    Feature = "statistics"
	FeatureMultiUser     Feature = "multi_user"
)

// BillingInterval is the billing frequency of a plan.
type BillingInterval string

const (
	BillingIntervalNone    BillingInterval = "none" // trial plans, no billing
	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalAnnual  BillingInterval = "annual"
)

// Money is an amount in the smallest currency unit (cents).
type Money struct {
	Amount   int64  `json:"amount" yaml:"amount"`
	Currency string `json:"currency" yaml:"currency"`
}

// Plan is a catalog entry. For paid plans ID is the billing provider's price
// ID so checkout and webhook processing map directly. Plans are immutable
// once referenced by a live subscription; the catalog is only changed by
// administrative reseeding.
type Plan struct {
	ID           string          `json:"id" yaml:"id"`
	Name         string          `json:"name" yaml:"name"`
	Description  string          `json:"description" yaml:"description"`
	Price        Money           `json:"price" yaml:"price"`
	Interval     BillingInterval `json:"interval" yaml:"interval"`
	DurationDays int             `json:"duration_days" yaml:"duration_days"`
	MaxPatients  int64           `json:"max_patients" yaml:"max_patients"`
	Features     []Feature       `json:"features" yaml:"features"`
	Active       bool            `json:"active" yaml:"active"`
	Trial        bool            `json:"trial" yaml:"trial"`
	TrialDays    int             `json:"trial_days" yaml:"trial_days"`
}

// Validate checks internal consistency of a single plan.
func (p Plan) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: plan ID is required", ErrInvalidPlanConfiguration)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: plan %s has no name", ErrInvalidPlanConfiguration, p.ID)
	}
	if p.TrialDays < 0 {
		return fmt.Errorf("%w: plan %s has negative trial days: %d", ErrInvalidPlanConfiguration, p.ID, p.TrialDays)
	}
	if p.Trial {
		if p.TrialDays == 0 {
			return fmt.Errorf("%w: trial plan %s has zero trial days", ErrInvalidPlanConfiguration, p.ID)
		}
		if p.Price.Amount != 0 {
			return fmt.Errorf("%w: trial plan %s must be free", ErrInvalidPlanConfiguration, p.ID)
		}
	} else {
		if p.DurationDays <= 0 {
			return fmt.Errorf("%w: paid plan %s has no duration", ErrInvalidPlanConfiguration, p.ID)
		}
	}
	if p.MaxPatients < Unlimited {
		return fmt.Errorf("%w: plan %s has invalid patient quota: %d", ErrInvalidPlanConfiguration, p.ID, p.MaxPatients)
	}
	return nil
}

// TrialEndsAt returns the end of a trial started at the given instant.
// Returns startedAt unchanged for plans without a trial.
func (p Plan) TrialEndsAt(startedAt time.Time) time.Time {
	if p.TrialDays <= 0 {
		return startedAt
	}
	return startedAt.AddDate(0, 0, p.TrialDays).UTC()
}

// PeriodEndFrom returns the end of a paid period starting at the given
// instant.
func (p Plan) PeriodEndFrom(start time.Time) time.Time {
	return start.AddDate(0, 0, p.DurationDays).UTC()
}
