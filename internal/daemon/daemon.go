package daemon

import (
	"context"

	"github.com/dbrack/mailer/internal/logger"
)

// Scheduler draws a randomized delay and blocks until it has elapsed.
type Scheduler interface {
	Next() uint
}

// Dispatcher sends one randomly chosen message.
type Dispatcher interface {
	Dispatch(ctx context.Context) (string, error)
}

// Daemon runs the wait-then-send loop.
type Daemon struct {
	scheduler  Scheduler
	dispatcher Dispatcher
	log        *logger.Logger
}

// New creates a new Daemon.
func New(scheduler Scheduler, dispatcher Dispatcher, log *logger.Logger) *Daemon {
	return &Daemon{
		scheduler:  scheduler,
		dispatcher: dispatcher,
		log:        log.WithComponent("daemon"),
	}
}

// Run loops until a dispatch fails and returns that error.
// It never returns nil. ctx is handed to the sender only; cancelling it does
// not interrupt a wait.
func (d *Daemon) Run(ctx context.Context) error {
	d.log.Info().Msg("Daemon started successfully")

	for cycle := uint64(1); ; cycle++ {
		d.scheduler.Next()

		if _, err := d.dispatcher.Dispatch(ctx); err != nil {
			d.log.WithCycle(cycle).Error().Err(err).Msg("Could not send email")
			return err
		}
		d.log.WithCycle(cycle).Debug().Msg("dispatch cycle complete")
	}
}

// RunOnce performs a single dispatch immediately, without waiting.
func (d *Daemon) RunOnce(ctx context.Context) error {
	_, err := d.dispatcher.Dispatch(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("Could not send email")
	}
	return err
}
