package patient

import "errors"

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrNameRequired         = errors.New("patient name is required")
	ErrQuotaReached         = errors.New("patient quota reached for current plan")
	ErrSubscriptionRequired = errors.New("an active subscription is required")
)
