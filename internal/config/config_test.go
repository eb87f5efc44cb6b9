//
// Date: 2026-02-15
// Copyright (c) 2026. All rights reserved.
//

package config

import (
	"errors"
	"testing"
)

// TestValidateRequiresCredentials verifies that Validate rejects a Config
// with neither an API key nor a username/password pair.
func TestValidateRequiresCredentials(t *testing.T) {
	cfg := &Config{Provider: ProviderRealtime}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

// TestValidateAcceptsUsernamePassword verifies that username/password is an
// acceptable substitute for an API key.
func TestValidateAcceptsUsernamePassword(t *testing.T) {
	cfg := &Config{Provider: ProviderRealtime, Username: "u", Password: "p"}

	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestValidateRejectsUnknownProvider verifies that an unrecognized provider
// string is rejected.
func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := &Config{APIKey: "k", Provider: "NOT_A_PROVIDER"}

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

// TestValidateManualRequiresIP verifies that the MANUAL provider requires
// an IP address.
func TestValidateManualRequiresIP(t *testing.T) {
	cfg := &Config{APIKey: "k", Provider: ProviderManual}

	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	cfg.IPAddress = "10.0.0.1"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestValidateRejectsNegativeSizes verifies that negative queue/worker sizes
// are rejected as configuration errors.
func TestValidateRejectsNegativeSizes(t *testing.T) {
	base := Config{APIKey: "k", Provider: ProviderRealtime}

	withQueue := base
	withQueue.MaxQueueSize = -1
	if err := withQueue.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for negative queue size, got %v", err)
	}

	withWorkers := base
	withWorkers.NumWorkers = -1
	if err := withWorkers.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for negative worker count, got %v", err)
	}
}

// TestQueueSizeAndWorkersFallback verifies that zero-valued fields fall back
// to the supplied default, and nonzero fields are returned unchanged.
func TestQueueSizeAndWorkersFallback(t *testing.T) {
	cfg := &Config{}

	if got := cfg.QueueSize(DefaultQueueSizeEquities); got != DefaultQueueSizeEquities {
		t.Errorf("expected default queue size, got %d", got)
	}
	if got := cfg.Workers(DefaultWorkersOptions); got != DefaultWorkersOptions {
		t.Errorf("expected default worker count, got %d", got)
	}

	cfg.MaxQueueSize = 42
	cfg.NumWorkers = 7
	if got := cfg.QueueSize(DefaultQueueSizeEquities); got != 42 {
		t.Errorf("expected overridden queue size 42, got %d", got)
	}
	if got := cfg.Workers(DefaultWorkersOptions); got != 7 {
		t.Errorf("expected overridden worker count 7, got %d", got)
	}
}

// TestFromEnvironmentDoesNotOverride verifies that FromEnvironment leaves an
// explicitly set APIKey untouched even when the environment variable differs.
func TestFromEnvironmentDoesNotOverride(t *testing.T) {
	t.Setenv("INTRINIO_API_KEY", "env-key")

	cfg := &Config{APIKey: "explicit-key"}
	cfg.FromEnvironment()

	if cfg.APIKey != "explicit-key" {
		t.Errorf("expected explicit-key to be preserved, got %s", cfg.APIKey)
	}
}

// TestFromEnvironmentFillsBlank verifies that FromEnvironment fills an empty
// APIKey from the environment variable.
func TestFromEnvironmentFillsBlank(t *testing.T) {
	t.Setenv("INTRINIO_API_KEY", "env-key")

	cfg := &Config{}
	cfg.FromEnvironment()

	if cfg.APIKey != "env-key" {
		t.Errorf("expected env-key, got %s", cfg.APIKey)
	}
}
