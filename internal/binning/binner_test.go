package binning

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmchl/Deidentification-App/internal/dataset"
)

func sequence(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("equal-width")
	require.NoError(t, err)
	assert.Equal(t, EqualWidth, m)

	m, err = ParseMethod("quantile")
	require.NoError(t, err)
	assert.Equal(t, EqualFrequency, m)

	_, err = ParseMethod("nope")
	assert.Error(t, err)
}

func TestDefaultBins(t *testing.T) {
	assert.Equal(t, 1, DefaultBins(0))
	assert.Equal(t, 1, DefaultBins(1))
	assert.Equal(t, 5, DefaultBins(5))
	assert.Equal(t, 10, DefaultBins(10))
	assert.Equal(t, 10, DefaultBins(500))
}

func TestColumnEqualWidth(t *testing.T) {
	values := []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
	binned, err := Column(values, 2, EqualWidth)
	require.NoError(t, err)

	assert.Equal(t, "0-4.5", binned[0])
	assert.Equal(t, "0-4.5", binned[4])
	assert.Equal(t, "4.5-9", binned[5])
	assert.Equal(t, "4.5-9", binned[9])
}

func TestColumnEqualFrequency(t *testing.T) {
	binned, err := Column(sequence(100), 4, EqualFrequency)
	require.NoError(t, err)

	counts := make(map[string]int)
	for _, label := range binned {
		counts[label]++
	}

	require.Len(t, counts, 4)
	total := 0
	for label, count := range counts {
		// Quantile edges land on ranks, so bins balance to within a row
		// or two of each other.
		assert.InDelta(t, 25, count, 2, "bin %s", label)
		total += count
	}
	assert.Equal(t, 100, total)
}

func TestColumnPreservesEmptyValues(t *testing.T) {
	binned, err := Column([]string{"", "1", "2", "3"}, 1, EqualWidth)
	require.NoError(t, err)
	assert.Equal(t, "", binned[0])
	assert.Equal(t, "1-3", binned[1])
}

func TestColumnAllEmpty(t *testing.T) {
	binned, err := Column([]string{"", ""}, 3, EqualWidth)
	require.NoError(t, err)
	assert.Equal(t, []string{"", ""}, binned)
}

func TestColumnClampsBinsToDistinctCount(t *testing.T) {
	binned, err := Column([]string{"5", "5", "5"}, 3, EqualWidth)
	require.NoError(t, err)
	assert.Equal(t, "5-5", binned[0])
	assert.Equal(t, binned[0], binned[2])
}

func TestColumnErrors(t *testing.T) {
	_, err := Column([]string{"a", "b"}, 2, EqualWidth)
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = Column([]string{"1"}, 0, EqualWidth)
	assert.ErrorIs(t, err, ErrInvalidBins)
}

func TestTable(t *testing.T) {
	table, err := dataset.New([]string{"Age", "City"}, map[string][]string{
		"Age":  {"10", "20", "30", "40"},
		"City": {"NY", "LA", "NY", "SF"},
	})
	require.NoError(t, err)
	require.NoError(t, table.SetKind("Age", dataset.KindNumeric))

	binned, err := Table(table, []string{"Age"}, map[string]int{"Age": 2}, EqualWidth)
	require.NoError(t, err)

	assert.True(t, binned.IsCategorical("Age"))

	ages, _ := binned.Column("Age")
	assert.Equal(t, "10-25", ages[0])
	assert.Equal(t, "25-40", ages[3])

	// Untouched columns carry over as-is.
	cities, _ := binned.Column("City")
	assert.Equal(t, []string{"NY", "LA", "NY", "SF"}, cities)

	// The source table is unchanged.
	raw, _ := table.Column("Age")
	assert.Equal(t, []string{"10", "20", "30", "40"}, raw)
}

func TestTableUnknownColumn(t *testing.T) {
	table, err := dataset.New([]string{"Age"}, map[string][]string{"Age": {"1"}})
	require.NoError(t, err)

	_, err = Table(table, []string{"Nope"}, nil, EqualWidth)
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestTableDefaultBinCount(t *testing.T) {
	table, err := dataset.New([]string{"Age"}, map[string][]string{
		"Age": {"1", "2", "3"},
	})
	require.NoError(t, err)

	binned, err := Table(table, []string{"Age"}, nil, EqualWidth)
	require.NoError(t, err)

	// Three distinct values cap the default bin count at three.
	ages, _ := binned.Column("Age")
	distinct := make(map[string]struct{})
	for _, label := range ages {
		distinct[label] = struct{}{}
	}
	assert.Len(t, distinct, 3)
}
