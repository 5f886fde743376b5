package service

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/splitledger/internal/calculator"
)

var errSessionNotFound = errors.New("split session not found or expired")

// splitSession is one in-progress bill. calc is only touched with mu held.
type splitSession struct {
	mu       sync.Mutex
	id       string
	groupID  string
	calc     *calculator.SplitSession
	lastUsed atomic.Int64 // unix nanos
	closed   bool
}

// sessionRegistry holds the open split sessions. Sessions untouched for
// longer than idle are dropped on the next registry access.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*splitSession
	idle     time.Duration
	now      func() time.Time
	gauge    prometheus.Gauge
}

func newSessionRegistry(idle time.Duration, gauge prometheus.Gauge) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]*splitSession),
		idle:     idle,
		now:      time.Now,
		gauge:    gauge,
	}
}

func (r *sessionRegistry) add(groupID string, calc *calculator.SplitSession) *splitSession {
	s := &splitSession{id: uuid.New().String(), groupID: groupID, calc: calc}
	s.lastUsed.Store(r.now().UnixNano())

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	r.sessions[s.id] = s
	r.gauge.Set(float64(len(r.sessions)))
	return s
}

// do runs fn with the session locked. fn may set closed to end the session.
func (r *sessionRegistry) do(id string, fn func(s *splitSession) error) error {
	r.mu.Lock()
	r.sweepLocked()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return errSessionNotFound
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errSessionNotFound
	}
	s.lastUsed.Store(r.now().UnixNano())
	err := fn(s)
	closed := s.closed
	s.mu.Unlock()

	if closed {
		r.remove(id)
	}
	return err
}

func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	r.gauge.Set(float64(len(r.sessions)))
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *sessionRegistry) sweepLocked() {
	cutoff := r.now().Add(-r.idle).UnixNano()
	for id, s := range r.sessions {
		if s.lastUsed.Load() < cutoff {
			delete(r.sessions, id)
		}
	}
	r.gauge.Set(float64(len(r.sessions)))
}
