package email

import (
	"context"
	"fmt"
	"regexp"
)

// Sender sends transactional emails (welcome message at registration,
// trial-expiry notices).
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound transactional email.
type Message struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Tag      string `json:"tag,omitempty"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validate checks the message is sendable.
func (m Message) Validate() error {
	if m.To == "" || !emailRegex.MatchString(m.To) {
		return fmt.Errorf("%w: invalid recipient %q", ErrInvalidMessage, m.To)
	}
	if m.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	}
	if m.BodyHTML == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}
	return nil
}

// Config holds email service configuration. The Postmark token is optional
// so development environments can fall back to the log sender.
type Config struct {
	PostmarkServerToken string `env:"POSTMARK_SERVER_TOKEN"`
	SenderEmail         string `env:"SENDER_EMAIL,required"`
	SupportEmail        string `env:"SUPPORT_EMAIL,required"`
}
