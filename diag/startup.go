// Package diag collects local startup timing milestones for one pane:
// creation, first enumeration, and first paint. Logged once, never
// persisted or exported.
package diag

import (
	"sync"
	"time"

	"github.com/redsalamander/folderview/logger"
)

// StartupMetrics times a pane's first-use milestones.
type StartupMetrics struct {
	mu sync.Mutex

	created          time.Time
	firstEnumeration time.Time
	firstPaint       time.Time
	logged           bool
}

// NewStartupMetrics stamps the creation milestone.
func NewStartupMetrics() *StartupMetrics {
	return &StartupMetrics{created: time.Now()}
}

// MarkFirstEnumeration records the first completed enumeration; later
// calls are ignored.
func (s *StartupMetrics) MarkFirstEnumeration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstEnumeration.IsZero() {
		s.firstEnumeration = time.Now()
	}
	s.maybeLogLocked()
}

// MarkFirstPaint records the first presented frame; later calls are
// ignored.
func (s *StartupMetrics) MarkFirstPaint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstPaint.IsZero() {
		s.firstPaint = time.Now()
	}
	s.maybeLogLocked()
}

// maybeLogLocked emits the one-line summary once both milestones exist.
func (s *StartupMetrics) maybeLogLocked() {
	if s.logged || s.firstEnumeration.IsZero() || s.firstPaint.IsZero() {
		return
	}
	s.logged = true
	logger.Get().Infof("startup: first enumeration %v, first paint %v",
		s.firstEnumeration.Sub(s.created), s.firstPaint.Sub(s.created))
}

// Durations returns the elapsed milestones for tests and diagnostics
// views; zero durations mean the milestone has not occurred.
func (s *StartupMetrics) Durations() (enumeration, paint time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.firstEnumeration.IsZero() {
		enumeration = s.firstEnumeration.Sub(s.created)
	}
	if !s.firstPaint.IsZero() {
		paint = s.firstPaint.Sub(s.created)
	}
	return
}
