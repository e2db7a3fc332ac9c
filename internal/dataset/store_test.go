package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRows() []Row {
	return []Row{
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 1, To: 99, Parity: ParityOdd},
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 2, To: 100, Parity: ParityEven},
		{PostalCode: "1012JS", City: "Amsterdam", Street: "Dam", From: 1, To: 0, Parity: ParityAny},
		{PostalCode: "3011BD", City: "Rotterdam", Street: "Coolsingel", From: 40, To: 120, Parity: ParityAny},
	}
}

func TestLoad(t *testing.T) {
	store, err := Load(validRows())
	require.NoError(t, err)
	assert.Equal(t, 4, store.Len())

	street, ok := store.StreetName("damstraat")
	require.True(t, ok)
	assert.Equal(t, "Damstraat", street)
	assert.Equal(t, 2, store.StreetFreq("damstraat"))
	assert.Equal(t, 3, store.CityFreq("amsterdam"))
}

func TestLoadRejectsDuplicateIdentity(t *testing.T) {
	rows := validRows()
	rows = append(rows, rows[0])

	store, err := Load(rows)
	assert.Nil(t, store)

	var derr *DatasetError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Keys, "1011AB|Damstraat|1-99")
}

func TestLoadRejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		row  Row
	}{
		{"bad postcode", Row{PostalCode: "10AB", City: "X", Street: "Y", From: 1, To: 9}},
		{"empty street", Row{PostalCode: "1011AB", City: "X", Street: "", From: 1, To: 9}},
		{"inverted range", Row{PostalCode: "1011AB", City: "X", Street: "Y", From: 9, To: 1}},
		{"negative from", Row{PostalCode: "1011AB", City: "X", Street: "Y", From: -1, To: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Load([]Row{tt.row})
			assert.Nil(t, store)
			var derr *DatasetError
			assert.True(t, errors.As(err, &derr))
		})
	}
}

func TestLoadRejectsOverlappingRanges(t *testing.T) {
	rows := []Row{
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 1, To: 51, Parity: ParityOdd},
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 33, To: 99, Parity: ParityOdd},
	}
	store, err := Load(rows)
	assert.Nil(t, store)

	var derr *DatasetError
	require.True(t, errors.As(err, &derr))
	assert.Len(t, derr.Keys, 2)
}

func TestLoadAllowsDisjointParities(t *testing.T) {
	rows := []Row{
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 1, To: 99, Parity: ParityOdd},
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 2, To: 100, Parity: ParityEven},
	}
	_, err := Load(rows)
	assert.NoError(t, err)
}

func TestLoadAllowsSingleHouseOnOppositeSide(t *testing.T) {
	rows := []Row{
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 1, To: 99, Parity: ParityOdd},
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 10, To: 10, Parity: ParityEven},
	}
	_, err := Load(rows)
	assert.NoError(t, err)
}

func TestLoadRejectsSingleHouseInsideOwnSide(t *testing.T) {
	rows := []Row{
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 1, To: 99, Parity: ParityOdd},
		{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 9, To: 9, Parity: ParityOdd},
	}
	store, err := Load(rows)
	assert.Nil(t, store)

	var derr *DatasetError
	require.True(t, errors.As(err, &derr))
	assert.Contains(t, derr.Keys, "1011AB|Damstraat|9-9")
}

func TestLookupExact(t *testing.T) {
	store, err := Load(validRows())
	require.NoError(t, err)

	rec, ok := store.LookupExact("1011AB", 7)
	require.True(t, ok)
	assert.Equal(t, ParityOdd, rec.Parity)

	rec, ok = store.LookupExact("1011 ab", 8)
	require.True(t, ok)
	assert.Equal(t, ParityEven, rec.Parity)

	_, ok = store.LookupExact("1011AB", 101)
	assert.False(t, ok)

	// open-ended range has no upper bound
	_, ok = store.LookupExact("1012JS", 100000)
	assert.True(t, ok)

	_, ok = store.LookupExact("9999ZZ", 1)
	assert.False(t, ok)
}

func TestRecordsForDistrict(t *testing.T) {
	store, err := Load(validRows())
	require.NoError(t, err)

	recs := store.RecordsForDistrict("1011")
	assert.Len(t, recs, 2)
	assert.Empty(t, store.RecordsForDistrict("9999"))
}

func TestGenerationIncrements(t *testing.T) {
	a, err := Load(validRows())
	require.NoError(t, err)
	b, err := Load(validRows())
	require.NoError(t, err)
	assert.Greater(t, b.Generation(), a.Generation())
}

func TestParityMatches(t *testing.T) {
	assert.True(t, ParityAny.Matches(3))
	assert.True(t, ParityAny.Matches(4))
	assert.True(t, ParityOdd.Matches(3))
	assert.False(t, ParityOdd.Matches(4))
	assert.True(t, ParityEven.Matches(4))
	assert.False(t, ParityEven.Matches(3))
}

func TestParseParity(t *testing.T) {
	for in, want := range map[string]Parity{"": ParityAny, "any": ParityAny, "Even": ParityEven, "ODD": ParityOdd} {
		got, err := ParseParity(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseParity("sideways")
	assert.Error(t, err)
}

func TestRecordContains(t *testing.T) {
	open := Record{From: 10, To: 0, Parity: ParityAny}
	assert.False(t, open.Contains(9))
	assert.True(t, open.Contains(10))
	assert.True(t, open.Contains(9999))

	odd := Record{From: 1, To: 99, Parity: ParityOdd}
	assert.True(t, odd.Contains(1))
	assert.False(t, odd.Contains(2))
	assert.False(t, odd.Contains(101))
}

func TestFormatLines(t *testing.T) {
	rec := Record{PostalCode: "1011AB", City: "Amsterdam", Street: "Damstraat", From: 1, To: 99}
	l1, l2 := rec.FormatLines(10)
	assert.Equal(t, "Damstraat 10", l1)
	assert.Equal(t, "1011AB Amsterdam", l2)
}
