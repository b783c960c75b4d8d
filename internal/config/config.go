package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when the configuration document violates an invariant.
var ErrInvalidConfig = errors.New("invalid configuration")

// MaxInterval is the largest interval, in seconds, that fits a time.Duration.
const MaxInterval = math.MaxInt64 / 1_000_000_000

// Config holds all configuration for the daemon.
// It is loaded once at startup and never mutated afterwards.
type Config struct {
	SMTPServer string `mapstructure:"smtp_server" validate:"required,hostname_rfc1123"`
	SMTPPort   int    `mapstructure:"smtp_port" validate:"min=1,max=65535"`
	From       string `mapstructure:"from" validate:"required,mailbox"`
	To         string `mapstructure:"to" validate:"required,mailbox"`
	Subject    string `mapstructure:"subject"`
	// Interval upper bound is MaxInterval
	Interval int       `mapstructure:"interval" validate:"gte=2,lte=9223372036"`
	Messages []string  `mapstructure:"messages" validate:"min=1"`
	Log      LogConfig `mapstructure:"log"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	// Level stops at info so the status lines are always written.
	Level  string `mapstructure:"level" validate:"omitempty,oneof=trace debug info"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=plain console text json"`
}

// Load reads the configuration document at path, applies defaults and
// MAILER_* environment overrides, and validates the result.
// Paths without an extension are read as JSON.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: config path is required", ErrInvalidConfig)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Bind environment variables
	v.SetEnvPrefix("MAILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		integralNumberHook,
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal config: %w", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// integralNumberHook rejects fractional JSON numbers for integer fields
// instead of letting them truncate.
func integralNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}

	var f float64
	switch n := data.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	default:
		return data, nil
	}

	if f != math.Trunc(f) {
		return nil, fmt.Errorf("%v is not an integer", f)
	}
	return data, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	v, err := newValidator()
	if err != nil {
		return fmt.Errorf("failed to build validator: %w", err)
	}
	if err := v.Validate(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// SMTP defaults: implicit TLS relay port
	v.SetDefault("smtp_port", 465)
	v.SetDefault("subject", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "plain")
}
