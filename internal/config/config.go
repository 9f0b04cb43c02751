// Package config defines process configuration structures and loading hooks.
//
// Conventions:
//   - Defaults live in New; Load layers a YAML file, a .env file and
//     environment variables on top.
//   - External errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/starboard/internal/domain/aggregate"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address for serve mode, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataPath is the leaderboard export to read; "-" reads stdin.
	DataPath string `koanf:"data_path"`

	// OutputPath receives the JSON render description; empty skips it,
	// "-" writes to stdout.
	OutputPath string `koanf:"output_path"`

	// Anonymize replaces display names with "Participant N".
	Anonymize bool `koanf:"anonymize"`

	// Timezone names the location completion times are shown in.
	// "Local" uses the host zone.
	Timezone string `koanf:"timezone"`

	// MinHour and DayMatch shape the release-day time-of-day view.
	MinHour  int    `koanf:"min_hour"`
	DayMatch string `koanf:"day_match"`

	// TopN bounds the summary listing.
	TopN int `koanf:"top_n"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           LogFormatText,
		Addr:                ":9080",
		DataPath:            "leaderboard.json",
		OutputPath:          "",
		Anonymize:           false,
		Timezone:            "Local",
		MinHour:             aggregate.DefaultMinHour,
		DayMatch:            aggregate.DayMatchCalendar,
		TopN:                5,
		MaxLeaderboardLimit: 100,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %w", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DataPath) == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case c.MinHour < 0 || c.MinHour > 23:
		return fmt.Errorf("%w: min_hour must be within 0..23, got %d", ErrInvalidConfig, c.MinHour)
	case c.TopN < 0:
		return fmt.Errorf("%w: top_n must not be negative", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log_format must be %q or %q", ErrInvalidConfig, LogFormatText, LogFormatJSON)
	}
	if _, err := aggregate.ParseDayMatch(c.DayMatch); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
