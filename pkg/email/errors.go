package email

import "errors"

var (
	ErrInvalidConfig  = errors.New("invalid email configuration")
	ErrInvalidMessage = errors.New("invalid email message")
	ErrFailedToSend   = errors.New("failed to send email")
)
