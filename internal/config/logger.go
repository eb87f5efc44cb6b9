//
// Date: 2026-02-14
// Copyright (c) 2026. All rights reserved.
//

package config

import (
	"fmt"
	"log"
	"os"
)

// stderrLogger is the default Logger, writing timestamped lines to stderr.
// It is used whenever a Config leaves Logger nil, matching the default
// logging.StreamHandler setup in original_source/intriniorealtime/*.py.
type stderrLogger struct {
	debug bool
	l     *log.Logger
}

// NewDefaultLogger returns the stderr-backed Logger used when Config.Logger
// is nil. Debugf is a no-op unless debug is true.
func NewDefaultLogger(debug bool) Logger {
	return &stderrLogger{
		debug: debug,
		l:     log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (s *stderrLogger) Debugf(format string, args ...interface{}) {
	if !s.debug {
		return
	}
	s.l.Output(2, "DEBUG "+fmt.Sprintf(format, args...))
}

func (s *stderrLogger) Infof(format string, args ...interface{}) {
	s.l.Output(2, "INFO "+fmt.Sprintf(format, args...))
}

func (s *stderrLogger) Errorf(format string, args ...interface{}) {
	s.l.Output(2, "ERROR "+fmt.Sprintf(format, args...))
}

// ResolveLogger returns cfg.Logger if set, otherwise a new default logger
// honoring cfg.Debug.
func (cfg *Config) ResolveLogger() Logger {
	if cfg.Logger != nil {
		return cfg.Logger
	}
	return NewDefaultLogger(cfg.Debug)
}
