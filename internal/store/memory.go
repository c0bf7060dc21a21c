// internal/store/memory.go
//
// In-memory session store for hosted games.
// This is an ephemeral layer: sessions are lost when the process restarts,
// which is fine since game state is never persisted.
//
// Characteristics:
//   - Stores *Entry values keyed by session ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Each Entry serializes access to its own controller and catches its
//     virtual clock up to wall-clock time before every operation.
//   - Idle sessions can be swept.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/matchup/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for hosted sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, e *Entry) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Entry, error)

	// Delete drops a session. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Sweep drops sessions idle for longer than maxIdle and reports how
	// many were removed.
	Sweep(ctx context.Context, maxIdle time.Duration) int
}

// Entry is one hosted game: a controller plus its command log.
type Entry struct {
	ID     string
	Events *game.Recorder

	mu       sync.Mutex
	ctl      *game.Controller
	clock    func() time.Time
	started  time.Time
	lastSeen time.Time
}

// NewEntry wraps a controller. clock may be nil for time.Now.
func NewEntry(ctl *game.Controller, events *game.Recorder, clock func() time.Time) *Entry {
	if clock == nil {
		clock = time.Now
	}
	now := clock()
	return &Entry{
		ID:       ctl.Session().ID,
		Events:   events,
		ctl:      ctl,
		clock:    clock,
		started:  now,
		lastSeen: now,
	}
}

// Do runs fn with exclusive access to the controller, after catching the
// controller's scheduler up to the time elapsed since the entry was made.
func (e *Entry) Do(fn func(*game.Controller) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()
	e.ctl.AdvanceTo(now.Sub(e.started))
	e.lastSeen = now
	return fn(e.ctl)
}

// View is Do for read-only snapshots.
func (e *Entry) View() game.View {
	var v game.View
	_ = e.Do(func(c *game.Controller) error {
		v = c.View()
		return nil
	})
	return v
}

func (e *Entry) idleSince() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSeen
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Entry
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Entry), now: time.Now}
}

func (m *memory) Save(ctx context.Context, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[e.ID] = e
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxIdle)
	n := 0
	for id, e := range m.sessions {
		if e.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
