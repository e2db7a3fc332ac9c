package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCacheRoundTrip(t *testing.T) {
	c, err := newResultCache(4)
	require.NoError(t, err)

	value := []MatchCandidate{{Score: 0.9}}
	key := c.key("Damstraat 10", "1011AB Amsterdam", 1)
	c.put(key, value)

	got, ok := c.get(key)
	require.True(t, ok)
	assert.Equal(t, value, got)
}

func TestResultCacheKeyNormalization(t *testing.T) {
	c, err := newResultCache(4)
	require.NoError(t, err)

	a := c.key("Damstraat 10", "1011AB  AMSTERDAM", 1)
	b := c.key("DAMSTRAAT 10", "1011ab Amsterdam", 1)
	assert.Equal(t, a, b)

	// same input, different dataset generation
	assert.NotEqual(t, a, c.key("Damstraat 10", "1011AB  AMSTERDAM", 2))
}

func TestResultCacheEvictsLRU(t *testing.T) {
	c, err := newResultCache(2)
	require.NoError(t, err)

	c.put("a", nil)
	c.put("b", nil)
	c.get("a") // refresh a, b becomes least recent
	c.put("c", nil)

	_, ok := c.get("b")
	assert.False(t, ok)
	_, ok = c.get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())
}
