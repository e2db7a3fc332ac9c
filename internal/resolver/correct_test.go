package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/address-resolver/internal/index"
)

func TestCorrectExact(t *testing.T) {
	r := testResolver(t, Config{})
	sugg, err := r.Correct(context.Background(), "Damstraat", index.FieldStreet, "", "", 0)
	require.NoError(t, err)
	require.Len(t, sugg, 1)
	assert.Equal(t, "Damstraat", sugg[0].Name)
	assert.Equal(t, 1.0, sugg[0].Score)
}

func TestCorrectTypo(t *testing.T) {
	r := testResolver(t, Config{})
	sugg, err := r.Correct(context.Background(), "Damstaat", index.FieldStreet, "", "", 0)
	require.NoError(t, err)
	require.NotEmpty(t, sugg)
	assert.Equal(t, "Damstraat", sugg[0].Name)
	assert.GreaterOrEqual(t, sugg[0].Score, 0.72)
	assert.Greater(t, sugg[0].Similarity, 0.8)
	assert.Equal(t, 2, sugg[0].Freq)
}

func TestCorrectCity(t *testing.T) {
	r := testResolver(t, Config{})
	sugg, err := r.Correct(context.Background(), "Amsterdm", index.FieldCity, "", "", 0)
	require.NoError(t, err)
	require.NotEmpty(t, sugg)
	assert.Equal(t, "Amsterdam", sugg[0].Name)
}

func TestCorrectPostalFilter(t *testing.T) {
	r := testResolver(t, Config{})

	// Coolsingel exists, but not under an Amsterdam postcode
	_, err := r.Correct(context.Background(), "Coolsingel", index.FieldStreet, "1011AB", "", 0)
	assert.ErrorIs(t, err, ErrNoMatch)

	sugg, err := r.Correct(context.Background(), "Coolsingel", index.FieldStreet, "3011BD", "", 0)
	require.NoError(t, err)
	require.Len(t, sugg, 1)
	assert.Equal(t, "Coolsingel", sugg[0].Name)
}

func TestCorrectDistrictFilter(t *testing.T) {
	r := testResolver(t, Config{})
	sugg, err := r.Correct(context.Background(), "Damstaat", index.FieldStreet, "1011", "", 0)
	require.NoError(t, err)
	require.NotEmpty(t, sugg)
	assert.Equal(t, "Damstraat", sugg[0].Name)

	_, err = r.Correct(context.Background(), "Damstaat", index.FieldStreet, "3011", "", 0)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestCorrectCityHint(t *testing.T) {
	r := testResolver(t, Config{})

	sugg, err := r.Correct(context.Background(), "Damstaat", index.FieldStreet, "", "Amsterdam", 0)
	require.NoError(t, err)
	require.NotEmpty(t, sugg)
	assert.Equal(t, "Damstraat", sugg[0].Name)

	// the street does not occur in the hinted city
	_, err = r.Correct(context.Background(), "Damstaat", index.FieldStreet, "", "Rotterdam", 0)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestCorrectNoInput(t *testing.T) {
	r := testResolver(t, Config{})
	_, err := r.Correct(context.Background(), "  --  ", index.FieldStreet, "", "", 0)
	assert.ErrorIs(t, err, ErrInsufficientInput)
}

func TestCorrectNoMatch(t *testing.T) {
	r := testResolver(t, Config{})
	_, err := r.Correct(context.Background(), "Xqzwvgh", index.FieldStreet, "", "", 0)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestValidate(t *testing.T) {
	r := testResolver(t, Config{})
	ctx := context.Background()

	v, err := r.Validate(ctx, "Damstraat 10", "1011AB Amsterdam")
	require.NoError(t, err)
	assert.True(t, v.Valid)
	require.NotNil(t, v.Record)
	assert.Equal(t, "Damstraat", v.Record.Street)

	v, err = r.Validate(ctx, "Damstraat 10", "Amsterdam")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Reason, "required")

	v, err = r.Validate(ctx, "Damstraat 10", "9999ZZ Amsterdam")
	require.NoError(t, err)
	assert.False(t, v.Valid)

	// wrong street for the postcode
	v, err = r.Validate(ctx, "Vijzelstraat 10", "1011AB Amsterdam")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Contains(t, v.Reason, "Damstraat")

	// spelling differences that normalize away are accepted
	v, err = r.Validate(ctx, "DAMSTRAAT 10", "1011AB AMSTERDAM")
	require.NoError(t, err)
	assert.True(t, v.Valid)
}

func TestSearchPostcode(t *testing.T) {
	r := testResolver(t, Config{})
	res, err := r.Search(context.Background(), "1011AB", 0)
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Empty(t, res.Suggestions)
}

func TestSearchDistrict(t *testing.T) {
	r := testResolver(t, Config{})
	res, err := r.Search(context.Background(), "1011", 0)
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
}

func TestSearchName(t *testing.T) {
	r := testResolver(t, Config{})
	res, err := r.Search(context.Background(), "Damstaat", 0)
	require.NoError(t, err)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "Damstraat", res.Suggestions[0].Name)
}

func TestSearchFallsBackToCity(t *testing.T) {
	r := testResolver(t, Config{})
	res, err := r.Search(context.Background(), "Rotterdm", 0)
	require.NoError(t, err)
	require.NotEmpty(t, res.Suggestions)
	assert.Equal(t, "Rotterdam", res.Suggestions[0].Name)
}

func TestSearchNoMatch(t *testing.T) {
	r := testResolver(t, Config{})
	_, err := r.Search(context.Background(), "9999XX", 0)
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = r.Search(context.Background(), "", 0)
	assert.ErrorIs(t, err, ErrInsufficientInput)
}
