package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCounterFixedWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryCounter()
	m.now = func() time.Time { return now }

	for i := int64(1); i <= 3; i++ {
		n, err := m.Hit(ctx, "ip:1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	n, _ := m.Hit(ctx, "ip:2", time.Minute)
	assert.Equal(t, int64(1), n, "keys are independent")

	now = now.Add(time.Minute)
	n, _ = m.Hit(ctx, "ip:1", time.Minute)
	assert.Equal(t, int64(1), n, "window reset")
}

func TestMemoryCounterSweepsExpiredWindows(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	m := NewMemoryCounter()
	m.now = func() time.Time { return now }
	m.sweepAt = 2

	_, _ = m.Hit(ctx, "a", time.Second)
	_, _ = m.Hit(ctx, "b", time.Second)

	now = now.Add(2 * time.Second)
	_, _ = m.Hit(ctx, "c", time.Second)

	assert.Len(t, m.windows, 1)
	assert.Contains(t, m.windows, "c")
}
