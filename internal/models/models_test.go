package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	f, err := ParseField("netincome")
	require.NoError(t, err)
	assert.Equal(t, FieldNetIncome, f)

	f, err = ParseField("  ")
	require.NoError(t, err)
	assert.Equal(t, Field(""), f)

	_, err = ParseField("ebitda")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"":           Ascending,
		"asc":        Ascending,
		"Ascending":  Ascending,
		"desc":       Descending,
		"DESCENDING": Descending,
	} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDirection("up")
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestSortSpecToggle(t *testing.T) {
	var s SortSpec
	s = s.Toggle(FieldRevenue)
	assert.Equal(t, SortSpec{Key: FieldRevenue, Direction: Ascending}, s)

	s = s.Toggle(FieldRevenue)
	assert.Equal(t, SortSpec{Key: FieldRevenue, Direction: Descending}, s)

	s = s.Toggle(FieldRevenue)
	assert.Equal(t, SortSpec{Key: FieldRevenue, Direction: Ascending}, s)

	s = s.Toggle(FieldRevenue).Toggle(FieldEPS)
	assert.Equal(t, SortSpec{Key: FieldEPS, Direction: Ascending}, s)
}

func TestFilterCriteriaIsEmpty(t *testing.T) {
	assert.True(t, FilterCriteria{}.IsEmpty())
	assert.False(t, FilterCriteria{EndDate: "2022"}.IsEmpty())
	assert.False(t, FilterCriteria{MaxNetIncome: Float(0)}.IsEmpty())
}

func TestRecordNumber(t *testing.T) {
	r := Record{Date: "2023", Revenue: 1, NetIncome: 2, GrossProfit: 3, EPS: 4.5, OperatingIncome: 6}
	assert.Equal(t, 1.0, r.Number(FieldRevenue))
	assert.Equal(t, 2.0, r.Number(FieldNetIncome))
	assert.Equal(t, 3.0, r.Number(FieldGrossProfit))
	assert.Equal(t, 4.5, r.Number(FieldEPS))
	assert.Equal(t, 6.0, r.Number(FieldOperatingIncome))
	assert.Equal(t, 0.0, r.Number(FieldDate))
}
