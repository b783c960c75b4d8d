package email

import (
	"context"

	"github.com/dbrack/mailer/internal/logger"
)

// LogSender implements Sender by logging the envelope instead of sending it.
// Used for dry runs.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a new LogSender.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log.WithComponent("log_sender")}
}

// Send logs the message and never fails.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info().
		Str("from", msg.From).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msgf("Dry run, not sending: %s", msg.TextBody)
	return nil
}
