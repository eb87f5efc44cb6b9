//
// Date: 2026-02-16
// Copyright (c) 2026. All rights reserved.
//

// Package realtime is the top-level facade over the receive pipeline: a
// supervisor owns authentication, connect/reconnect with backoff, and
// subscription resync, driving internal/transport into internal/queue and
// internal/worker. EquitiesClient and OptionsClient
// (equities.go, options.go) embed the shared supervisor defined here and add
// their family-specific wire decoding and callback signatures.
//
// Adapted from internal/ws/client.go's Connect/Listen/Close shape,
// generalized with the state machine, backoff schedule, and token
// lifecycle in spec.md §4.6.
package realtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudmanic/realtime-client/internal/auth"
	"github.com/cloudmanic/realtime-client/internal/config"
)

// State names one node of the supervisor state machine (spec.md §4.6).
type State int

const (
	StateInit State = iota
	StateAuthenticating
	StateConnecting
	StateReady
	StateBackoff
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateConnecting:
		return "CONNECTING"
	case StateReady:
		return "READY"
	case StateBackoff:
		return "BACKOFF"
	case StateDraining:
		return "DRAINING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// backoffSchedule is the fixed reconnect delay ladder (spec.md §4.6).
var backoffSchedule = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
	300 * time.Second,
	600 * time.Second,
}

// Stats is the get_stats() snapshot (spec.md §6): data-message count,
// text-message count, and current queue depth.
type Stats struct {
	DataMsgCount uint64
	TextMsgCount uint64
	QueueDepth   int
}

// supervisor holds the state-machine fields shared by EquitiesClient and
// OptionsClient: current State, backoff index, the auth session, and the
// stop signal. Reconnection, token refresh, and shutdown ordering all live
// here so the two product clients only add wire decoding and dispatch.
type supervisor struct {
	cfg        *config.Config
	logger     config.Logger
	authClient *auth.Client
	session    auth.Session

	mu    sync.Mutex
	state State

	stopCh   chan struct{}
	stopOnce sync.Once
}

func newSupervisor(cfg *config.Config) (*supervisor, error) {
	cfg.FromEnvironment()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &supervisor{
		cfg:        cfg,
		logger:     cfg.ResolveLogger(),
		authClient: auth.NewClient(cfg),
		session:    auth.Session{BackoffIndex: -1},
		state:      StateInit,
		stopCh:     make(chan struct{}),
	}, nil
}

// State returns the current supervisor state.
func (s *supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// stopping reports whether Stop has been called.
func (s *supervisor) stopping() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

// Stop signals every supervisor loop iteration and blocking sleep to exit.
func (s *supervisor) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.setState(StateDraining)
}

// ensureToken fetches a fresh token if the session has none or the held
// token is older than auth.MaxTokenAge, applying the 24h refresh rule
// uniformly across equities and options (spec.md §9 open question).
func (s *supervisor) ensureToken() (string, error) {
	if !s.session.Stale() {
		return s.session.Token, nil
	}

	s.setState(StateAuthenticating)
	token, err := s.authClient.Fetch()
	if err != nil {
		return "", fmt.Errorf("realtime: authentication failed: %w", err)
	}

	s.session.Token = token
	s.session.AcquiredAt = time.Now()
	return token, nil
}

// nextBackoffDelay returns the current backoff slot, advancing the index
// (capped at the last slot) for next time. Index is monotonic non-decreasing
// within an attempt chain (spec.md §8).
func (s *supervisor) nextBackoffDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.BackoffIndex < len(backoffSchedule)-1 {
		s.session.BackoffIndex++
	}
	return backoffSchedule[s.session.BackoffIndex]
}

// resetBackoff resets the backoff index to -1, exactly on a successful
// on_connect (spec.md §8).
func (s *supervisor) resetBackoff() {
	s.mu.Lock()
	s.session.BackoffIndex = -1
	s.mu.Unlock()
}

// sleepBackoff blocks for the current backoff slot or until Stop is called,
// whichever comes first. Returns false if Stop fired during the sleep.
func (s *supervisor) sleepBackoff(ctx context.Context) bool {
	s.setState(StateBackoff)
	delay := s.nextBackoffDelay()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}
