package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/impact-simulator/internal/domain"
	"github.com/couchcryptid/impact-simulator/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingNarrator struct {
	calls     int
	narrative string
	err       error
}

func (m *countingNarrator) Narrate(_ context.Context, _ domain.Params, _ domain.ImpactCalculations) (string, error) {
	m.calls++
	return m.narrative, m.err
}

// --- CachedNarrator tests ---

func TestCachedNarrator_CacheHit(t *testing.T) {
	inner := &countingNarrator{narrative: "Impact."}
	cached := NewCachedNarrator(inner, 10, observability.NewMetricsForTesting())
	p, calc := testInput()

	n1, err := cached.Narrate(context.Background(), p, calc)
	require.NoError(t, err)
	n2, err := cached.Narrate(context.Background(), p, calc)
	require.NoError(t, err)

	assert.Equal(t, "Impact.", n1)
	assert.Equal(t, n1, n2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedNarrator_DifferentParamsMiss(t *testing.T) {
	inner := &countingNarrator{narrative: "Impact."}
	cached := NewCachedNarrator(inner, 10, observability.NewMetricsForTesting())
	p, calc := testInput()

	_, _ = cached.Narrate(context.Background(), p, calc)
	p.Angle = 60
	_, _ = cached.Narrate(context.Background(), p, calc)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedNarrator_ErrorsNotCached(t *testing.T) {
	inner := &countingNarrator{err: errors.New("quota exceeded")}
	cached := NewCachedNarrator(inner, 10, observability.NewMetricsForTesting())
	p, calc := testInput()

	_, err := cached.Narrate(context.Background(), p, calc)
	require.Error(t, err)

	inner.err = nil
	inner.narrative = "Recovered."
	n, err := cached.Narrate(context.Background(), p, calc)
	require.NoError(t, err)
	assert.Equal(t, "Recovered.", n)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedNarrator_EmptyNotCached(t *testing.T) {
	inner := &countingNarrator{}
	cached := NewCachedNarrator(inner, 10, observability.NewMetricsForTesting())
	p, calc := testInput()

	_, _ = cached.Narrate(context.Background(), p, calc)
	_, _ = cached.Narrate(context.Background(), p, calc)

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 0, cached.cache.size())
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", "A")
	c.put("b", "B")

	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, "A", v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", "A")
	c.put("b", "B")
	_, _ = c.get("a") // a is now most recent
	c.put("c", "C")   // evicts b

	_, ok := c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.size())
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", "A")
	c.put("a", "A2")

	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, "A2", v)
	assert.Equal(t, 1, c.size())
}
