package email

import (
	"context"
	"log/slog"
)

// LogSender writes emails to the application log instead of delivering
// them. Used in development and tests.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "email (not sent, dev mode)",
		"to", msg.To,
		"subject", msg.Subject,
		"tag", msg.Tag,
	)
	return nil
}
