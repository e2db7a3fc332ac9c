package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/address-resolver/internal/dataset"
)

func testRows() []dataset.Row {
	return []dataset.Row{
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 1, To: 99, Parity: dataset.ParityOdd},
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 2, To: 100, Parity: dataset.ParityEven},
		{PostalCode: "1012JS", City: "Amsterdam", Street: "Dam", From: 1, To: 0},
		{PostalCode: "1017CV", City: "Amsterdam", Street: "Vijzelstraat", From: 1, To: 99, Parity: dataset.ParityOdd},
		{PostalCode: "3011BD", City: "Rotterdam", Street: "Coolsingel", From: 40, To: 120},
		{PostalCode: "2511CS", City: "Den Haag", Street: "Spui", From: 1, To: 75},
	}
}

func testResolver(t *testing.T, cfg Config) *Resolver {
	t.Helper()
	store, err := dataset.Load(testRows())
	require.NoError(t, err)
	r, err := New(store, cfg, zap.NewNop())
	require.NoError(t, err)
	return r
}

func TestResolveExact(t *testing.T) {
	r := testResolver(t, Config{})
	results, err := r.Resolve(context.Background(), "Damstraat 10", "1011AB Amsterdam")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "Damstraat", top.Record.Street)
	assert.Equal(t, "1011AB", top.Record.PostalCode)
	assert.Equal(t, dataset.ParityEven, top.Record.Parity)
	assert.InDelta(t, 1.0, top.Score, 1e-9)
	assert.ElementsMatch(t, []string{"street", "city", "postal_code", "house_number"}, top.MatchedFields)
}

func TestResolveStreetTypo(t *testing.T) {
	r := testResolver(t, Config{})
	results, err := r.Resolve(context.Background(), "Damstaat 10", "1011AB Amsterdam")
	require.NoError(t, err)
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "Damstraat", top.Record.Street)
	assert.GreaterOrEqual(t, top.Score, 0.72)
}

func TestResolveInsufficientInput(t *testing.T) {
	r := testResolver(t, Config{})
	for _, in := range [][2]string{
		{"", ""},
		{"", "1011AB"},
		{"   ", "  "},
	} {
		_, err := r.Resolve(context.Background(), in[0], in[1])
		assert.ErrorIs(t, err, ErrInsufficientInput, "input %v", in)
	}
}

func TestResolvePostalContradiction(t *testing.T) {
	r := testResolver(t, Config{})
	_, err := r.Resolve(context.Background(), "Damstraat 10", "9999ZZ Amsterdam")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolveHouseNumberOutOfRange(t *testing.T) {
	r := testResolver(t, Config{})
	_, err := r.Resolve(context.Background(), "Damstraat 999", "1011AB Amsterdam")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolveUnknownCity(t *testing.T) {
	r := testResolver(t, Config{})
	_, err := r.Resolve(context.Background(), "Damstraat 10", "1011AB Xqzwv")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolveStreetOnly(t *testing.T) {
	r := testResolver(t, Config{})
	results, err := r.Resolve(context.Background(), "Damstraat 10", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, dataset.ParityEven, results[0].Record.Parity)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.ElementsMatch(t, []string{"street", "house_number"}, results[0].MatchedFields)
}

func TestResolveCityOnly(t *testing.T) {
	r := testResolver(t, Config{})
	results, err := r.Resolve(context.Background(), "", "Amsterdam")
	require.NoError(t, err)
	assert.Len(t, results, 4)
	for _, c := range results {
		assert.Equal(t, "Amsterdam", c.Record.City)
	}
}

func TestResolveMaxResults(t *testing.T) {
	r := testResolver(t, Config{MaxResults: 2})
	results, err := r.Resolve(context.Background(), "", "Amsterdam")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestResolveDeterministic(t *testing.T) {
	a := testResolver(t, Config{})
	b := testResolver(t, Config{})
	for i := 0; i < 5; i++ {
		ra, err := a.Resolve(context.Background(), "Damstaat 10", "Amsterdm")
		require.NoError(t, err)
		rb, err := b.Resolve(context.Background(), "Damstaat 10", "Amsterdm")
		require.NoError(t, err)
		assert.Equal(t, ra, rb)
	}
}

func TestResolveCancelledContext(t *testing.T) {
	r := testResolver(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Resolve(ctx, "Damstraat 10", "1011AB Amsterdam")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveCaches(t *testing.T) {
	r := testResolver(t, Config{})
	first, err := r.Resolve(context.Background(), "Damstraat 10", "1011AB Amsterdam")
	require.NoError(t, err)
	assert.Equal(t, 1, r.CacheLen())

	second, err := r.Resolve(context.Background(), "Damstraat 10", "1011AB Amsterdam")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.CacheLen())

	// cache keys are built from normalized lines
	_, err = r.Resolve(context.Background(), "DAMSTRAAT 10", "1011ab  Amsterdam")
	require.NoError(t, err)
	assert.Equal(t, 1, r.CacheLen())
}

func TestResolveCacheEviction(t *testing.T) {
	store, err := dataset.Load(testRows())
	require.NoError(t, err)
	r, err := New(store, Config{CacheSize: 2}, zap.NewNop())
	require.NoError(t, err)

	queries := [][2]string{
		{"Damstraat 10", "Amsterdam"},
		{"Dam 1", "Amsterdam"},
		{"Coolsingel 40", "Rotterdam"},
	}
	for _, q := range queries {
		_, err := r.Resolve(context.Background(), q[0], q[1])
		require.NoError(t, err)
	}
	assert.Equal(t, 2, r.CacheLen())
}

func TestReloadInvalidatesCache(t *testing.T) {
	r := testResolver(t, Config{})
	results, err := r.Resolve(context.Background(), "Spui 7", "Den Haag")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	oldGen := r.Generation()

	// the street disappears in the new dataset
	next, err := dataset.Load(testRows()[:4])
	require.NoError(t, err)
	r.Reload(next)
	assert.Greater(t, r.Generation(), oldGen)

	_, err = r.Resolve(context.Background(), "Spui 7", "Den Haag")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestResolveRanksExactAboveFuzzy(t *testing.T) {
	store, err := dataset.Load([]dataset.Row{
		{PostalCode: "1012JS", City: "Amsterdam", Street: "Dam", From: 1, To: 0},
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 1, To: 0},
	})
	require.NoError(t, err)
	r, err := New(store, Config{}, zap.NewNop())
	require.NoError(t, err)

	results, err := r.Resolve(context.Background(), "Dam 1", "Amsterdam")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Dam", results[0].Record.Street)
}
