package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/njchilds90/equationshift"
)

const (
	DefaultMaxSessions = 10000
	DefaultIdleTimeout = 30 * time.Minute
)

// ErrStoreFull is returned by Add when every slot holds a session that is
// still in use.
var ErrStoreFull = errors.New("server: too many sessions")

type session struct {
	equation *equationshift.Equation
	touched  time.Time
}

// Store keeps the live equations by session id. It holds at most max
// sessions; sessions untouched for idle are dropped when room is needed.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	max      int
	idle     time.Duration
}

func NewStore(max int, idle time.Duration) *Store {
	return &Store{sessions: map[string]*session{}, max: max, idle: idle}
}

// Add registers e under a fresh id and returns the id.
func (s *Store) Add(e *equationshift.Equation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.max {
		s.evictIdle(time.Now())
	}
	if len(s.sessions) >= s.max {
		return "", ErrStoreFull
	}
	id := uuid.NewString()
	s.sessions[id] = &session{equation: e, touched: time.Now()}
	sessionsActive.Inc()
	return id, nil
}

// Get returns the session and marks it as used.
func (s *Store) Get(id string) (*equationshift.Equation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.touched = time.Now()
	return sess.equation, true
}

// Delete drops a session and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	sessionsActive.Dec()
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// evictIdle must be called with mu held.
func (s *Store) evictIdle(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.touched) >= s.idle {
			delete(s.sessions, id)
			sessionsActive.Dec()
			sessionsEvicted.Inc()
		}
	}
}
