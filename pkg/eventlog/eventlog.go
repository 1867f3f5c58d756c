// Package eventlog is the operator-facing sink for remediation outcomes.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"dc-harden/pkg/model"
)

// Sink writes remediation outcomes to a log file, or stderr when no path is
// configured. Init must succeed before Emit is used.
type Sink struct {
	mu    sync.Mutex
	path  string
	file  *os.File
	ready bool
}

func New(path string) *Sink {
	return &Sink{path: path}
}

// Init verifies the sink destination is writable, creating the log file and
// its directory when needed.
func (s *Sink) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if s.path == "" {
		s.ready = true
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("event log dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event log %s: %w", s.path, err)
	}
	s.file = f
	s.ready = true
	return nil
}

// Emit writes one run outcome: a severity header followed by each log line in
// order.
func (s *Sink) Emit(procedure string, sev model.Severity, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return fmt.Errorf("event sink not initialized")
	}
	out := s.file
	if out == nil {
		out = os.Stderr
	}
	ts := time.Now().Format(time.RFC3339)
	if _, err := fmt.Fprintf(out, "%s %s %s\n", ts, sev, procedure); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(out, "  %s\n", l); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		s.ready = false
		return err
	}
	return nil
}
