package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_PlainFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "plain")

	log.WithComponent("daemon").WithCycle(3).Info().Msg("Daemon started successfully")

	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} Daemon started successfully`, buf.String())
	assert.NotContains(t, buf.String(), "INF")
	assert.NotContains(t, buf.String(), "component")
	assert.NotContains(t, buf.String(), "cycle")
}

func TestNewWithWriter_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "json")

	log.WithComponent("dispatcher").WithCycle(7).Debug().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "dispatcher", entry["component"])
	assert.EqualValues(t, 7, entry["cycle"])
	assert.Equal(t, "debug", entry["level"])
}

func TestNewWithWriter_LevelFallback(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{name: "empty", level: "", want: zerolog.InfoLevel},
		{name: "garbage", level: "loud", want: zerolog.InfoLevel},
		{name: "warn", level: "warn", want: zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := NewWithWriter(&bytes.Buffer{}, tt.level, "json")
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNewWithWriter_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "plain")

	log.Info().Msg("quiet")
	assert.Empty(t, buf.String())

	log.Warn().Msg("loud")
	assert.Contains(t, buf.String(), "loud")
}
