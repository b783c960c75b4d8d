package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/dbrack/mailer/internal/config"
	"github.com/dbrack/mailer/internal/email"
	"github.com/dbrack/mailer/internal/logger"
)

// ErrSendFailed is matched by every error Dispatch returns for a failed send.
var ErrSendFailed = errors.New("could not send email")

// ErrNoMessages is returned by New for an empty message pool.
var ErrNoMessages = errors.New("message pool is empty")

// SendError carries the transport error of a failed dispatch.
type SendError struct {
	Body string
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSendFailed, e.Err)
}

func (e *SendError) Unwrap() []error {
	return []error{ErrSendFailed, e.Err}
}

// Dispatcher picks a message body at random and sends it.
type Dispatcher struct {
	from     string
	to       string
	subject  string
	messages []string
	sender   email.Sender
	rng      *rand.Rand
	log      *logger.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRand sets the random source used to pick bodies.
func WithRand(rng *rand.Rand) Option {
	return func(d *Dispatcher) {
		d.rng = rng
	}
}

// New creates a new Dispatcher from the loaded configuration.
func New(cfg *config.Config, sender email.Sender, log *logger.Logger, opts ...Option) (*Dispatcher, error) {
	if len(cfg.Messages) == 0 {
		return nil, ErrNoMessages
	}

	messages := make([]string, len(cfg.Messages))
	copy(messages, cfg.Messages)

	d := &Dispatcher{
		from:     cfg.From,
		to:       cfg.To,
		subject:  cfg.Subject,
		messages: messages,
		sender:   sender,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		log:      log.WithComponent("dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Pick returns one body chosen uniformly at random, with replacement.
func (d *Dispatcher) Pick() string {
	return d.messages[d.rng.IntN(len(d.messages))]
}

// Envelope builds the outgoing message for body.
func (d *Dispatcher) Envelope(body string) email.Message {
	return email.Message{
		From:     d.from,
		To:       d.to,
		Subject:  d.subject,
		TextBody: body,
	}
}

// Dispatch sends one randomly chosen message and returns its body.
// A failed send returns a *SendError; the caller is expected to stop.
func (d *Dispatcher) Dispatch(ctx context.Context) (string, error) {
	d.log.Info().Msg("Preparing to send email")

	body := d.Pick()
	if err := d.sender.Send(ctx, d.Envelope(body)); err != nil {
		return body, &SendError{Body: body, Err: err}
	}

	d.log.Info().Msgf("Email sent successfully! Message body: %s", body)
	return body, nil
}
