package scheduler

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dbrack/mailer/internal/logger"
)

// MinInterval is the smallest interval that leaves a non-empty range [1, interval).
const MinInterval = 2

// MaxInterval is the largest interval whose delays still fit a time.Duration.
const MaxInterval = uint(math.MaxInt64 / int64(time.Second))

var (
	// ErrIntervalTooShort is returned for intervals below MinInterval.
	ErrIntervalTooShort = errors.New("interval must be at least 2 seconds")
	// ErrIntervalTooLong is returned for intervals above MaxInterval.
	ErrIntervalTooLong = errors.New("interval does not fit a time.Duration")
)

func checkInterval(interval uint) error {
	if interval < MinInterval {
		return fmt.Errorf("%w: got %d", ErrIntervalTooShort, interval)
	}
	if interval > MaxInterval {
		return fmt.Errorf("%w: got %d, max %d", ErrIntervalTooLong, interval, MaxInterval)
	}
	return nil
}

// Scheduler draws the randomized wait before each dispatch and blocks for it.
type Scheduler struct {
	interval uint
	rng      *rand.Rand
	sleep    func(time.Duration)
	log      *logger.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRand sets the random source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Scheduler) {
		s.rng = rng
	}
}

// WithSleep replaces time.Sleep.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Scheduler) {
		s.sleep = sleep
	}
}

// New creates a new Scheduler. interval is the exclusive upper bound, in seconds.
func New(interval uint, log *logger.Logger, opts ...Option) (*Scheduler, error) {
	if err := checkInterval(interval); err != nil {
		return nil, err
	}

	s := &Scheduler{
		interval: interval,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		sleep:    time.Sleep,
		log:      log.WithComponent("scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// NextDelay draws a delay in seconds uniformly from [1, interval).
func NextDelay(rng *rand.Rand, interval uint) (uint, error) {
	if err := checkInterval(interval); err != nil {
		return 0, err
	}
	return 1 + rng.UintN(interval-1), nil
}

// NextDelay draws the next delay in seconds.
func (s *Scheduler) NextDelay() uint {
	// interval was checked in New
	delay, _ := NextDelay(s.rng, s.interval)
	return delay
}

// Wait blocks for exactly seconds.
func (s *Scheduler) Wait(seconds uint) {
	s.sleep(time.Duration(seconds) * time.Second)
}

// Next draws a delay, reports it and blocks until it has elapsed.
// It returns the delay that was slept.
func (s *Scheduler) Next() uint {
	delay := s.NextDelay()
	s.log.Info().Msgf("Sleeping for %d seconds", delay)
	s.Wait(delay)
	return delay
}
