package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// TimeFormat is the timestamp layout of the status lines.
const TimeFormat = "2006-01-02 15:04:05"

// Logger wraps zerolog.Logger with application-specific methods
type Logger struct {
	zerolog.Logger
}

// New creates a new Logger instance writing to stdout
func New(level string, format string) *Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter creates a new Logger instance writing to w.
//
// Formats:
//   - "plain": "YYYY-MM-DD HH:MM:SS <message>" status lines, no level, no color
//   - "text" or "console": zerolog's human-readable console output
//   - anything else: JSON
func NewWithWriter(w io.Writer, level string, format string) *Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger

	switch format {
	case "plain":
		output := zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    true,
			TimeFormat: TimeFormat,
			PartsOrder: []string{zerolog.TimestampFieldName, zerolog.MessageFieldName},
			// context fields stay in json/console output only
			FieldsExclude: []string{"component", "cycle"},
		}
		logger = zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	case "text", "console":
		// Human-readable output for development
		output := zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
		logger = zerolog.New(output).Level(lvl).With().Timestamp().Caller().Logger()
	default:
		logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	}

	return &Logger{Logger: logger}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// WithComponent returns a new logger with the component name attached
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.With().Str("component", component).Logger(),
	}
}

// WithCycle returns a new logger tagged with the dispatch cycle number
func (l *Logger) WithCycle(cycle uint64) *Logger {
	return &Logger{
		Logger: l.With().Uint64("cycle", cycle).Logger(),
	}
}
