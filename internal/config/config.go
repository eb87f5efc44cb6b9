//
// Date: 2026-02-14
// Copyright (c) 2026. All rights reserved.
//

// Package config defines the configuration surface for the realtime client:
// credentials, provider selection, queueing, and replay options.
package config

import (
	"errors"
	"fmt"
	"os"
)

// Provider identifies which upstream feed a client authenticates against.
// Each provider maps to a fixed auth/websocket host pair (see internal/auth).
type Provider string

const (
	ProviderRealtime    Provider = "REALTIME"
	ProviderDelayedSIP  Provider = "DELAYED_SIP"
	ProviderNasdaqBasic Provider = "NASDAQ_BASIC"
	ProviderIEX         Provider = "IEX"
	ProviderCBOEOne     Provider = "CBOE_ONE"
	ProviderOPRA        Provider = "OPRA"
	ProviderManual      Provider = "MANUAL"
)

// validProviders enumerates every accepted Provider value; used by Validate.
var validProviders = map[Provider]bool{
	ProviderRealtime:    true,
	ProviderDelayedSIP:  true,
	ProviderNasdaqBasic: true,
	ProviderIEX:         true,
	ProviderCBOEOne:     true,
	ProviderOPRA:        true,
	ProviderManual:      true,
}

// ErrInvalidConfig is wrapped by every configuration validation failure so
// callers can detect a config-class error with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every option a realtime client accepts, spanning both the
// equities and options product lines plus replay mode (spec.md §6).
type Config struct {
	// Credentials. Either APIKey, or both Username and Password, is required.
	APIKey   string
	Username string
	Password string

	Provider  Provider
	IPAddress string // required when Provider == ProviderManual

	TradesOnly bool // equities only: JOIN flag bit for trades-only channels
	Delayed    bool // appends &delayed=true to the websocket URL

	Channels []string // initial subscription set

	MaxQueueSize  int // staging queue capacity; 0 means use the family default
	NumWorkers    int // worker pool size; 0 means use the family default
	Debug         bool
	BypassParsing bool // hand raw frame bytes to callbacks instead of decoding

	// Replay-only fields.
	ReplayDate         string // YYYY-MM-DD
	WithSimulatedDelay bool
	DeleteFileWhenDone bool
	WriteToCSV         bool
	CSVFilePath        string

	Logger Logger
}

// Logger is the minimal logging surface library code depends on. Callers may
// supply their own implementation (e.g. adapting zap or logrus); DefaultLogger
// is used when Config.Logger is nil, mirroring the injectable 'logger' option
// in every client of original_source/intriniorealtime.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// DefaultQueueSizeEquities is the staging queue capacity used when an
// equities client does not set MaxQueueSize (spec.md §4.2).
const DefaultQueueSizeEquities = 10_000

// DefaultQueueSizeOptions is the staging queue capacity used when an options
// client does not set MaxQueueSize (spec.md §4.2).
const DefaultQueueSizeOptions = 250_000

// DefaultWorkersEquities is the worker pool size used when an equities
// client does not set NumWorkers.
const DefaultWorkersEquities = 1

// DefaultWorkersOptions is the worker pool size used when an options client
// does not set NumWorkers.
const DefaultWorkersOptions = 4

// Validate checks the fields required at construction time. Configuration
// errors are reported synchronously and are fatal (spec.md §7); everything
// else (auth failures, transport errors) is recovered internally by the
// supervisor and never reaches here.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		if c.Username == "" || c.Password == "" {
			return fmt.Errorf("%w: api key, or username and password, are required", ErrInvalidConfig)
		}
	}

	if !validProviders[c.Provider] {
		return fmt.Errorf("%w: provider %q is invalid", ErrInvalidConfig, c.Provider)
	}

	if c.Provider == ProviderManual && c.IPAddress == "" {
		return fmt.Errorf("%w: ipaddress is required for the MANUAL provider", ErrInvalidConfig)
	}

	if c.MaxQueueSize < 0 {
		return fmt.Errorf("%w: max_queue_size must not be negative", ErrInvalidConfig)
	}

	if c.NumWorkers < 0 {
		return fmt.Errorf("%w: num_threads must not be negative", ErrInvalidConfig)
	}

	return nil
}

// QueueSize returns MaxQueueSize, falling back to the provided default.
func (c *Config) QueueSize(def int) int {
	if c.MaxQueueSize > 0 {
		return c.MaxQueueSize
	}
	return def
}

// Workers returns NumWorkers, falling back to the provided default.
func (c *Config) Workers(def int) int {
	if c.NumWorkers > 0 {
		return c.NumWorkers
	}
	return def
}

// FromEnvironment fills in credential fields from environment variables when
// they are unset, mirroring the MASSIVE_API_KEY convention of
// cloudmanic-massive's internal/config package. It never overrides a value
// already set on cfg.
func (cfg *Config) FromEnvironment() {
	if cfg.APIKey == "" {
		if key := os.Getenv("INTRINIO_API_KEY"); key != "" {
			cfg.APIKey = key
		}
	}
	if cfg.Username == "" {
		cfg.Username = os.Getenv("INTRINIO_USERNAME")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("INTRINIO_PASSWORD")
	}
}
