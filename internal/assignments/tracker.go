package assignments

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fieldscope/verity/pkg/lifecycle"
)

// Tracker maintains one Session per reviewer and drives their countdowns
// on a fixed cadence independent of any in-flight network call.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*Session
	release  ReleaseFunc
	interval time.Duration
	logger   *slog.Logger
}

// NewTracker creates a Tracker ticking sessions at the given interval.
func NewTracker(release ReleaseFunc, interval time.Duration, logger *slog.Logger) *Tracker {
	return &Tracker{
		sessions: make(map[string]*Session),
		release:  release,
		interval: interval,
		logger:   logger.With("system", "sessions"),
	}
}

// Session returns the reviewer's session, creating it on first use.
func (t *Tracker) Session(reviewer string) *Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[reviewer]
	if !ok {
		s = NewSession(t.release, t.logger.With("reviewer", reviewer))
		t.sessions[reviewer] = s
	}
	return s
}

// Start registers the countdown loop with the lifecycle coordinator.
func (t *Tracker) Start(lc *lifecycle.Coordinator) error {
	t.logger.Info("starting session tracker", "interval", t.interval)

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				t.tickAll()
			}
		}
	}()

	return nil
}

func (t *Tracker) tickAll() {
	t.mu.Lock()
	sessions := make([]*Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		sessions = append(sessions, s)
	}
	t.mu.Unlock()

	for _, s := range sessions {
		s.Tick()
	}
}
