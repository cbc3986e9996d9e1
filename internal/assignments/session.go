package assignments

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the lease session state.
type State string

// Session states. A session moves Idle -> Requesting -> Active -> Idle.
const (
	StateIdle       State = "idle"
	StateRequesting State = "requesting"
	StateActive     State = "active"
)

// ReleaseFunc releases the lease on a response. Session cleanup invokes it
// best-effort: errors are swallowed because the lease may already have been
// reclaimed by the sweeper or another grant.
type ReleaseFunc func(ctx context.Context, responseID uuid.UUID) error

// Session tracks one reviewer's lease countdown. It is advisory: the lease
// table is the source of truth for ownership. The session exists to drive
// the expiry countdown and to fire cleanup exactly once per lease.
type Session struct {
	mu         sync.Mutex
	state      State
	responseID uuid.UUID
	expiresAt  time.Time
	release    ReleaseFunc
	logger     *slog.Logger
	now        func() time.Time
}

// NewSession creates an idle session with the given release callback.
func NewSession(release ReleaseFunc, logger *slog.Logger) *Session {
	return &Session{
		state:   StateIdle,
		release: release,
		logger:  logger,
		now:     time.Now,
	}
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active returns the leased response and expiry when the session holds a lease.
func (s *Session) Active() (uuid.UUID, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return uuid.Nil, time.Time{}, false
	}
	return s.responseID, s.expiresAt, true
}

// Begin marks the session as requesting the next item. The session does not
// reject a request while a lease is active; preventing that is the caller's
// responsibility. A request replacing an active lease releases the old one.
func (s *Session) Begin() {
	s.mu.Lock()
	prev, hadLease := s.responseID, s.state == StateActive
	s.state = StateRequesting
	s.responseID = uuid.Nil
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if hadLease {
		s.releaseAsync(prev)
	}
}

// Activate binds a granted lease to the session.
func (s *Session) Activate(responseID uuid.UUID, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateActive
	s.responseID = responseID
	s.expiresAt = expiresAt
}

// Deny returns a requesting session to idle when the queue was empty.
func (s *Session) Deny() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRequesting {
		s.state = StateIdle
	}
}

// Tick recomputes the remaining lease time. When the lease has expired the
// session transitions to idle exactly once and fires one release, regardless
// of how many further ticks arrive. Returns the remaining duration, or zero
// when no lease is active.
func (s *Session) Tick() time.Duration {
	s.mu.Lock()

	if s.state != StateActive {
		s.mu.Unlock()
		return 0
	}

	remaining := s.expiresAt.Sub(s.now())
	if remaining > 0 {
		s.mu.Unlock()
		return remaining
	}

	id := s.responseID
	s.toIdleLocked()
	s.mu.Unlock()

	s.logger.Info("lease expired", "response", id)
	s.releaseAsync(id)
	return 0
}

// Close dismisses an active lease without submitting, releasing it best-effort.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return
	}
	id := s.responseID
	s.toIdleLocked()
	s.mu.Unlock()

	s.releaseAsync(id)
}

// Submit marks a successful verification submission. The submission path
// releases the lease transactionally, so no release call is issued here.
func (s *Session) Submit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toIdleLocked()
}

func (s *Session) toIdleLocked() {
	s.state = StateIdle
	s.responseID = uuid.Nil
	s.expiresAt = time.Time{}
}

// releaseAsync fires the release without blocking the caller. The countdown
// path must never wait on network latency, and a failed release is benign:
// the lease table expiry predicate has already made the row reclaimable.
func (s *Session) releaseAsync(responseID uuid.UUID) {
	if s.release == nil {
		return
	}
	go func() {
		if err := s.release(context.Background(), responseID); err != nil {
			s.logger.Debug("best-effort release failed", "response", responseID, "error", err)
		}
	}()
}
