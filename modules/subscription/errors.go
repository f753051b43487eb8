package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPlanInactive         = errors.New("subscription plan is not active")
	ErrPlanNotPurchasable   = errors.New("subscription plan cannot be purchased")
	ErrInvalidState         = errors.New("invalid subscription state")
)
