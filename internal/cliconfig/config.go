package cliconfig

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/envship/pkg/delivery"
	"github.com/bft-labs/envship/pkg/envship"
)

// Config holds CLI configuration for envship.
type Config struct {
	DSN    string
	Tunnel string

	Category string

	BufferSize   int
	DrainTimeout time.Duration
	Timeout      time.Duration

	HTTPProxy   string
	HTTPSProxy  string
	NoProxy     string
	CACertsPath string
	WatchCA     bool

	Compress          bool
	RequestsPerSecond float64
	Burst             int

	Headers map[string]string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	lib := envship.DefaultConfig()
	return Config{
		Category:     string(delivery.CategoryError),
		BufferSize:   lib.BufferSize,
		DrainTimeout: 10 * time.Second,
		Timeout:      lib.Timeout,
		Burst:        lib.Burst,
		RedisPrefix:  "envship:outcomes",
		LogLevel:     "info",
	}
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	if c.DSN == "" {
		return errors.New("dsn is required")
	}

	cat, err := delivery.ParseCategory(c.Category)
	if err != nil {
		return err
	}
	c.Category = string(cat)

	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive")
	}
	if c.DrainTimeout <= 0 {
		return fmt.Errorf("drain timeout must be positive")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("rps must not be negative")
	}
	if c.WatchCA && c.CACertsPath == "" {
		return fmt.Errorf("watch-ca requires ca-certs")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	return nil
}

// ClientConfig converts the CLI configuration to the library configuration.
func (c *Config) ClientConfig() envship.Config {
	cfg := envship.DefaultConfig()
	cfg.DSN = c.DSN
	cfg.Tunnel = c.Tunnel
	cfg.BufferSize = c.BufferSize
	cfg.DrainTimeout = c.DrainTimeout
	cfg.Timeout = c.Timeout
	cfg.HTTPProxy = c.HTTPProxy
	cfg.HTTPSProxy = c.HTTPSProxy
	cfg.NoProxy = c.NoProxy
	cfg.CACertsPath = c.CACertsPath
	cfg.Compress = c.Compress
	cfg.RequestsPerSecond = c.RequestsPerSecond
	cfg.Burst = c.Burst
	cfg.Headers = c.Headers
	return cfg
}

// Masked returns a copy safe for logging.
func (c Config) Masked() Config {
	if i := strings.Index(c.DSN, "@"); i > 0 {
		if j := strings.Index(c.DSN, "://"); j >= 0 && j+3 < i {
			c.DSN = c.DSN[:j+3] + "*****" + c.DSN[i:]
		}
	}
	if c.RedisPassword != "" {
		c.RedisPassword = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
