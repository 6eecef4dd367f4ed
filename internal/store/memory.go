// internal/store/memory.go
//
// In-memory lesson session store.
//
// Characteristics:
//   - Stores *lesson.Lesson values keyed by ID in a map.
//   - Concurrency-safe via RWMutex.
//   - Every Save/Get refreshes the entry; Sweep evicts entries idle longer than the TTL
//     and closes them so their timers and subscribers are released.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/blocksum/internal/lesson"
)

// ErrNotFound is returned for unknown or evicted lesson IDs.
var ErrNotFound = errors.New("lesson not found")

// Store defines the session interface for lessons.
type Store interface {
	// Save adds or replaces a lesson.
	Save(ctx context.Context, l *lesson.Lesson) error

	// Get retrieves a lesson by ID and marks it as recently used.
	Get(ctx context.Context, id string) (*lesson.Lesson, error)

	// Touch marks a lesson as recently used without returning it.
	Touch(ctx context.Context, id string) error

	// Delete closes and removes a lesson.
	Delete(ctx context.Context, id string) error

	// Sweep evicts lessons idle since before now-TTL and returns how many.
	Sweep(ctx context.Context, now time.Time) int

	// Len reports how many lessons are held.
	Len() int
}

type entry struct {
	lesson  *lesson.Lesson
	touched time.Time
}

type memory struct {
	mu      sync.RWMutex
	lessons map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore constructs an in-memory Store with idle TTL ttl.
func NewMemoryStore(ttl time.Duration) Store {
	return &memory{lessons: make(map[string]*entry), ttl: ttl, now: time.Now}
}

// NewID returns a fresh lesson identifier.
func NewID() string { return uuid.NewString() }

func (m *memory) Save(ctx context.Context, l *lesson.Lesson) error {
	if l.ID() == "" {
		return errors.New("store: lesson has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.lessons[l.ID()]; ok && old.lesson != l {
		old.lesson.Close()
	}
	m.lessons[l.ID()] = &entry{lesson: l, touched: m.now()}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*lesson.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lessons[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.touched = m.now()
	return e.lesson, nil
}

func (m *memory) Touch(ctx context.Context, id string) error {
	_, err := m.Get(ctx, id)
	return err
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.lessons[id]
	delete(m.lessons, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	e.lesson.Close()
	return nil
}

func (m *memory) Sweep(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-m.ttl)
	var evicted []*lesson.Lesson
	m.mu.Lock()
	for id, e := range m.lessons {
		if e.touched.Before(cutoff) {
			evicted = append(evicted, e.lesson)
			delete(m.lessons, id)
		}
	}
	m.mu.Unlock()
	for _, l := range evicted {
		l.Close()
	}
	return len(evicted)
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.lessons)
}
