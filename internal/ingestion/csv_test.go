package ingestion

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-interest-lab/internal/domain"
)

func TestParseSkipsHeader(t *testing.T) {
	csv := "Month,Interest\n2020-01,10\n2020-02,12\n"

	raw, err := Parse(strings.NewReader(csv), "s1")
	require.NoError(t, err)

	assert.Equal(t, "s1", raw.SeriesID)
	assert.Equal(t, domain.Month{Year: 2020, Month: 1}, raw.Start)
	assert.Equal(t, []float64{10, 12}, raw.Values)
}

func TestParseBelowOne(t *testing.T) {
	csv := "2020-01,<1\n2020-02,3\n"

	raw, err := Parse(strings.NewReader(csv), "s1")
	require.NoError(t, err)

	assert.Equal(t, 0.5, raw.Values[0])
	assert.True(t, raw.BelowOne[0])
	assert.False(t, raw.BelowOne[1])
	assert.Equal(t, 1, raw.BelowOneCount())
}

func TestParseGaps(t *testing.T) {
	csv := "2020-01,10\n2020-02,\n2020-03,NA\n2020-04,14\n"

	raw, err := Parse(strings.NewReader(csv), "s1")
	require.NoError(t, err)

	assert.True(t, math.IsNaN(raw.Values[1]))
	assert.True(t, math.IsNaN(raw.Values[2]))
	assert.Equal(t, 2, raw.GapCount())
}

func TestParseNonContiguous(t *testing.T) {
	csv := "2020-01,10\n2020-03,12\n"

	_, err := Parse(strings.NewReader(csv), "s1")
	assert.ErrorIs(t, err, ErrNonContiguous)
}

func TestParseDuplicateMonth(t *testing.T) {
	csv := "2020-01,10\n2020-02,11\n2020-01,12\n"

	_, err := Parse(strings.NewReader(csv), "s1")
	assert.ErrorIs(t, err, ErrDuplicateMonth)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader("Month,Interest\n"), "s1")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestParseNegativeValue(t *testing.T) {
	_, err := Parse(strings.NewReader("2020-01,-5\n"), "s1")
	assert.Error(t, err)
}

func TestParseYearBoundary(t *testing.T) {
	csv := "2019-12,9\n2020-01,10\n"

	raw, err := Parse(strings.NewReader(csv), "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.Month{Year: 2019, Month: 12}, raw.Start)
	assert.Len(t, raw.Values, 2)
}
