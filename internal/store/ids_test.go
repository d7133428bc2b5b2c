package store

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDGenerator_SameMillisecondNeverCollides(t *testing.T) {
	t.Parallel()

	frozen := time.UnixMilli(1_700_000_000_000)
	g := &IDGenerator{now: func() time.Time { return frozen }}

	assert.Equal(t, int64(1_700_000_000_000), g.Next())
	assert.Equal(t, int64(1_700_000_000_001), g.Next())
	assert.Equal(t, int64(1_700_000_000_002), g.Next())
}

func TestIDGenerator_ClockGoingBackwards(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(2_000)
	g := &IDGenerator{now: func() time.Time { return now }}

	first := g.Next()
	now = time.UnixMilli(1_000)
	assert.Greater(t, g.Next(), first)
}

func TestIDGenerator_Observe(t *testing.T) {
	t.Parallel()

	g := &IDGenerator{now: func() time.Time { return time.UnixMilli(10) }}
	g.Observe(500)
	assert.Equal(t, int64(501), g.Next())

	g.Observe(3) // lower ids are ignored
	assert.Equal(t, int64(502), g.Next())
}

func TestIDGenerator_Concurrent(t *testing.T) {
	t.Parallel()

	g := NewIDGenerator()
	const workers, per = 8, 200

	var (
		mu   sync.Mutex
		seen = make(map[int64]struct{}, workers*per)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				id := g.Next()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Len(t, seen, workers*per)
}
