package catalog

import "errors"

var (
	ErrPlanNotFound             = errors.New("subscription plan not found")
	ErrNoTrialPlan              = errors.New("no trial plan configured")
	ErrInvalidPlanConfiguration = errors.New("invalid plan configuration")
	ErrFailedToLoadPlans        = errors.New("failed to load plan catalog")
)
