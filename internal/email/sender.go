package email

import "context"

// Sender is the interface that all email transports must implement.
type Sender interface {
	// Send transmits a single message.
	Send(ctx context.Context, msg Message) error
}

// Message represents an outgoing email envelope.
type Message struct {
	From     string // sender mailbox, e.g. "Bot <bot@example.com>"
	To       string // recipient mailbox
	Subject  string // may be empty
	TextBody string // plain-text body
}
