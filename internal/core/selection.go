package core

// selection.go implements "last selection wins" for uploads.
//
// Each upload takes a generation from a single counter when it starts. The
// session remembers only its newest generation. When a decode finishes, it
// may commit only if its generation is still the one remembered; committing
// forgets the entry, so a finished upload can never be committed twice and an
// older upload finishing later finds nothing and is superseded.
//
// Commits and edits run under a per-session lock, so a slow store round trip
// for one session never holds up another. The shared mutex only guards the
// generation map and the lock table.

import (
	"errors"
	"sync"
)

// ErrSuperseded is returned when a newer upload or a clear replaced this
// upload's selection before it finished decoding. Its grid is discarded.
var ErrSuperseded = errors.New("upload superseded by a newer selection")

type selections struct {
	mu     sync.Mutex
	next   uint64
	latest map[string]uint64
	locks  map[string]*sessionLock
}

// sessionLock serializes commits and edits for one session. It is dropped
// from the table once no caller holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSelections() *selections {
	return &selections{
		latest: make(map[string]uint64),
		locks:  make(map[string]*sessionLock),
	}
}

// lockSession blocks until the caller owns session's lock and returns the
// function that releases it.
func (s *selections) lockSession(session string) func() {
	s.mu.Lock()
	l, ok := s.locks[session]
	if !ok {
		l = &sessionLock{}
		s.locks[session] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, session)
		}
		s.mu.Unlock()
	}
}

// begin records a new selection for session and returns its generation.
func (s *selections) begin(session string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.latest[session] = s.next
	return s.next
}

// commit runs fn under session's lock if gen is still the newest selection
// for session. The entry is removed whether or not fn succeeds. A selection
// begun while fn runs commits after it and wins.
func (s *selections) commit(session string, gen uint64, fn func() error) error {
	unlock := s.lockSession(session)
	defer unlock()

	s.mu.Lock()
	current := s.latest[session] == gen
	if current {
		delete(s.latest, session)
	}
	s.mu.Unlock()

	if !current {
		return ErrSuperseded
	}
	return fn()
}

// abandon forgets gen if it is still the newest selection for session.
func (s *selections) abandon(session string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[session] == gen {
		delete(s.latest, session)
	}
}

// locked runs fn under session's lock. With cancelPending, any upload still
// in flight for session is superseded first.
func (s *selections) locked(session string, cancelPending bool, fn func() error) error {
	unlock := s.lockSession(session)
	defer unlock()

	if cancelPending {
		s.mu.Lock()
		delete(s.latest, session)
		s.mu.Unlock()
	}
	return fn()
}

// pending reports how many sessions have an upload in flight.
func (s *selections) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.latest)
}
