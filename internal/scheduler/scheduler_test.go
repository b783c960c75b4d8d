package scheduler

import (
	"bytes"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbrack/mailer/internal/logger"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(42, 1024))
}

func TestNew_IntervalBounds(t *testing.T) {
	tests := []struct {
		name     string
		interval uint
		wantErr  error
	}{
		{name: "zero", interval: 0, wantErr: ErrIntervalTooShort},
		{name: "one", interval: 1, wantErr: ErrIntervalTooShort},
		{name: "minimum", interval: MinInterval},
		{name: "maximum", interval: MaxInterval},
		{name: "just above maximum", interval: MaxInterval + 1, wantErr: ErrIntervalTooLong},
		{name: "overflows duration", interval: 2 * MaxInterval, wantErr: ErrIntervalTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.interval, logger.Nop())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestNextDelay_RejectsOutOfRangeInterval(t *testing.T) {
	_, err := NextDelay(seeded(), 1)
	assert.ErrorIs(t, err, ErrIntervalTooShort)

	_, err = NextDelay(seeded(), MaxInterval+1)
	assert.ErrorIs(t, err, ErrIntervalTooLong)
}

func TestScheduler_MaxIntervalSleepsArePositive(t *testing.T) {
	var slept []time.Duration
	s, err := New(MaxInterval, logger.Nop(),
		WithRand(seeded()),
		WithSleep(func(d time.Duration) { slept = append(slept, d) }),
	)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		delay := s.Next()
		require.Greater(t, slept[i], time.Duration(0), "delay %d", delay)
		require.Equal(t, time.Duration(delay)*time.Second, slept[i])
	}
}

func TestNextDelay_IntervalTwoAlwaysOne(t *testing.T) {
	rng := seeded()
	for i := 0; i < 1000; i++ {
		delay, err := NextDelay(rng, 2)
		require.NoError(t, err)
		require.Equal(t, uint(1), delay)
	}
}

func TestNextDelay_Uniform(t *testing.T) {
	const (
		interval = 11
		samples  = 100_000
	)

	rng := seeded()
	counts := make(map[uint]int)
	for i := 0; i < samples; i++ {
		delay, err := NextDelay(rng, interval)
		require.NoError(t, err)
		require.GreaterOrEqual(t, delay, uint(1))
		require.Less(t, delay, uint(interval))
		counts[delay]++
	}

	// every value of [1, interval-1] shows up
	require.Len(t, counts, interval-1)

	// chi-squared goodness of fit, 9 degrees of freedom; 27.88 is the p=0.001 critical value
	expected := float64(samples) / float64(interval-1)
	var chi2 float64
	for _, c := range counts {
		diff := float64(c) - expected
		chi2 += diff * diff / expected
	}
	assert.Less(t, chi2, 27.88)

	for v, c := range counts {
		assert.InDelta(t, expected, float64(c), 0.05*expected, "value %d", v)
	}
}

func TestScheduler_Next(t *testing.T) {
	var slept []time.Duration
	var buf bytes.Buffer

	s, err := New(5, logger.NewWithWriter(&buf, "info", "plain"),
		WithRand(seeded()),
		WithSleep(func(d time.Duration) { slept = append(slept, d) }),
	)
	require.NoError(t, err)

	delay := s.Next()

	require.Len(t, slept, 1)
	assert.Equal(t, time.Duration(delay)*time.Second, slept[0])
	assert.GreaterOrEqual(t, delay, uint(1))
	assert.Less(t, delay, uint(5))
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} Sleeping for \d seconds`, buf.String())
}

func TestScheduler_WaitExactDuration(t *testing.T) {
	var slept time.Duration
	s, err := New(10, logger.Nop(), WithSleep(func(d time.Duration) { slept = d }))
	require.NoError(t, err)

	s.Wait(7)
	assert.Equal(t, 7*time.Second, slept)
}
