package billing

import "errors"

var (
	ErrInvalidCheckoutRequest = errors.New("invalid checkout request")
	ErrInvalidWebhook         = errors.New("invalid webhook payload")
	ErrWebhookSignature       = errors.New("webhook signature verification failed")
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrNoProviderCustomer     = errors.New("no billing provider customer on record")
	ErrProviderMisconfigured  = errors.New("billing provider misconfigured")
)
