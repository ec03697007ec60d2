// Package session keeps one dashboard controller per client in a bounded LRU.
// Evicting a session discards its filter state; nothing is persisted.
package session

import (
	"sync"

	"github.com/couchcryptid/population-dashboard/internal/chart"
	"github.com/couchcryptid/population-dashboard/internal/controller"
	"github.com/couchcryptid/population-dashboard/internal/observability"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// Images serves the rendered charts of a session's latest dashboard.
type Images interface {
	PNG(view chart.ViewID) ([]byte, error)
}

// Session pairs a controller with the images rendered from it.
type Session struct {
	ID         string
	Controller *controller.Controller
	Images     Images
}

// Factory builds the controller and image sink for a new session. The images
// are typically the controller's renderer.
type Factory func() (*controller.Controller, Images)

// Store is a thread-safe LRU of sessions keyed by ID.
type Store struct {
	factory Factory
	metrics *observability.Metrics
	cache   *lru.Cache

	// mu keeps the active-sessions gauge in step with the cache length.
	mu sync.Mutex
}

// NewStore creates a Store holding at most maxEntries sessions. A
// non-positive maxEntries allows a single session.
func NewStore(maxEntries int, factory Factory, metrics *observability.Metrics) *Store {
	s := &Store{factory: factory, metrics: metrics}
	// Only fails for a non-positive size.
	s.cache, _ = lru.NewWithEvict(max(maxEntries, 1), s.onEvict)
	return s
}

// Create starts a new session with a random ID and the default selection.
func (s *Store) Create() *Session {
	ctrl, images := s.factory()
	sess := &Session{
		ID:         uuid.NewString(),
		Controller: ctrl,
		Images:     images,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(sess.ID, sess)
	if s.metrics != nil {
		s.metrics.ActiveSessions.Set(float64(s.cache.Len()))
	}
	return sess
}

// Get returns the session and marks it most recently used.
func (s *Store) Get(id string) (*Session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Session), true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}

func (s *Store) onEvict(_, _ interface{}) {
	if s.metrics != nil {
		s.metrics.SessionEvictions.Inc()
	}
}
