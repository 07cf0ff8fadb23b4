package cache

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryCounter is a process-local Counter. Expired windows are swept
// lazily once the map grows past sweepAt entries.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
	sweepAt int
}

var _ Counter = (*MemoryCounter)(nil)

// NewMemoryCounter creates an empty in-process counter
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*window),
		now:     time.Now,
		sweepAt: 1024,
	}
}

// Hit never fails
func (m *MemoryCounter) Hit(_ context.Context, key string, d time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		if len(m.windows) >= m.sweepAt {
			m.sweep(now)
		}
		w = &window{resetAt: now.Add(d)}
		m.windows[key] = w
	}
	w.count++
	return w.count, nil
}

func (m *MemoryCounter) sweep(now time.Time) {
	for k, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, k)
		}
	}
	if len(m.windows) >= m.sweepAt {
		m.sweepAt *= 2
	}
}
