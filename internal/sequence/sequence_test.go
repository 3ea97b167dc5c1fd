package sequence

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
}

func TestCounterGenerator_Formats(t *testing.T) {
	g := NewCounterGenerator(fixedClock)

	assert.Equal(t, "PR-2026-08-28-001", g.NextPR())
	assert.Equal(t, "PR-2026-08-28-002", g.NextPR())
	assert.Equal(t, "EXC-20260828-001", g.NextException())
	assert.Equal(t, "RULE-001", g.NextRule())
	assert.Equal(t, "RULE-002", g.NextRule())
}

func TestCounterGenerator_IndependentCounters(t *testing.T) {
	g := NewCounterGenerator(fixedClock)

	g.NextPR()
	g.NextPR()
	g.NextPR()
	assert.Equal(t, "EXC-20260828-001", g.NextException())
	assert.Equal(t, "RULE-001", g.NextRule())
}

func TestCounterGenerator_ConcurrentUnique(t *testing.T) {
	g := NewCounterGenerator(fixedClock)

	const n = 100
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- g.NextPR()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, n)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestUUIDGenerator_Prefixes(t *testing.T) {
	g := UUIDGenerator{}

	assert.True(t, strings.HasPrefix(g.NextPR(), "PR-"))
	assert.True(t, strings.HasPrefix(g.NextException(), "EXC-"))
	assert.True(t, strings.HasPrefix(g.NextRule(), "RULE-"))
	assert.NotEqual(t, g.NextPR(), g.NextPR())
}

func TestNew_SchemeSelection(t *testing.T) {
	assert.IsType(t, UUIDGenerator{}, New(SchemeUUID))
	assert.IsType(t, &CounterGenerator{}, New(SchemeSequence))
	assert.IsType(t, &CounterGenerator{}, New("bogus"))
}
