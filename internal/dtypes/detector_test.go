package dtypes

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmchl/Deidentification-App/internal/dataset"
)

func newTestDetector() *Detector {
	return NewDetector(DefaultThresholds(), zerolog.Nop())
}

func TestDetectColumn(t *testing.T) {
	manyFactors := make([]string, 100)
	for i := range manyFactors {
		manyFactors[i] = []string{"red", "green", "blue"}[i%3]
	}

	tests := []struct {
		name   string
		values []string
		want   Type
	}{
		{"integers", []string{"1", "2", "3", "-4"}, TypeInt},
		{"floats", []string{"1.5", "2.25", "3.0", "4.5"}, TypeFloat},
		{"numeric with few blanks", []string{"1", "2", "", "3"}, TypeInt},
		{"mostly non-numeric", []string{"1", "2", "abc", "def", "ghi", "jkl", "mno", "pqr", "stu", "vwx"}, TypeString},
		{"iso dates", []string{"2021-01-02", "2020-05-06", "2019-12-31"}, TypeDate},
		{"booleans", []string{"true", "false", "true"}, TypeBool},
		{"zero one flags", []string{"0", "1", "0", "1"}, TypeInt},
		{"factor", manyFactors, TypeFactor},
		{"free text", []string{"alpha", "beta", "gamma"}, TypeString},
		{"empty column", []string{"", "", ""}, TypeString},
		{"no values", nil, TypeString},
	}

	detector := newTestDetector()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, detector.DetectColumn(tc.name, tc.values))
		})
	}
}

func TestDetectColumnThresholds(t *testing.T) {
	// With a lenient numeric threshold the mixed column flips to numeric.
	detector := NewDetector(Thresholds{
		Numeric:      0.5,
		Date:         0.5,
		FactorRatio:  0.5,
		FactorUnique: 50,
	}, zerolog.Nop())

	values := []string{"1", "2", "3", "abc"}
	assert.Equal(t, TypeInt, detector.DetectColumn("mixed", values))
	assert.Equal(t, TypeString, newTestDetector().DetectColumn("mixed", values))
}

func TestDetectMatchesDetectColumn(t *testing.T) {
	names := make([]string, 8)
	cols := make(map[string][]string, len(names))
	for i := range names {
		names[i] = fmt.Sprintf("col%d", i)
		cols[names[i]] = []string{
			fmt.Sprintf("%d", i), fmt.Sprintf("%d", i*2), "x",
		}
	}
	table, err := dataset.New(names, cols)
	require.NoError(t, err)

	detector := newTestDetector()
	types, err := detector.Detect(context.Background(), table)
	require.NoError(t, err)

	require.Len(t, types, len(names))
	for _, name := range names {
		values, _ := table.Column(name)
		assert.Equal(t, detector.DetectColumn(name, values), types[name])
	}
}

func TestDetectCancelled(t *testing.T) {
	table, err := dataset.New([]string{"A"}, map[string][]string{"A": {"1"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = newTestDetector().Detect(ctx, table)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestApplyKindsAndFactorEncoding(t *testing.T) {
	table, err := dataset.New([]string{"Age", "Color"}, map[string][]string{
		"Age":   {"20", "30", "20"},
		"Color": {"b", "a", "b"},
	})
	require.NoError(t, err)

	detector := newTestDetector()
	types := map[string]Type{"Age": TypeInt, "Color": TypeFactor}

	applied, err := detector.Apply(table, types, true)
	require.NoError(t, err)

	assert.Equal(t, dataset.KindNumeric, applied.Kind("Age"))
	assert.True(t, applied.IsCategorical("Color"))

	encoded, err := applied.Column("Color")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "0", "1"}, encoded)

	mapping := detector.CategoryMapping()
	require.Contains(t, mapping, "Color")
	assert.Equal(t, map[int]string{0: "a", 1: "b"}, mapping["Color"])

	// Input table is untouched.
	raw, _ := table.Column("Color")
	assert.Equal(t, []string{"b", "a", "b"}, raw)
	assert.True(t, table.IsCategorical("Age"))
}

func TestApplyWithoutFactorEncoding(t *testing.T) {
	table, err := dataset.New([]string{"Color"}, map[string][]string{
		"Color": {"b", "a", "b"},
	})
	require.NoError(t, err)

	detector := newTestDetector()
	applied, err := detector.Apply(table, map[string]Type{"Color": TypeFactor}, false)
	require.NoError(t, err)

	values, _ := applied.Column("Color")
	assert.Equal(t, []string{"b", "a", "b"}, values)
	assert.Empty(t, detector.CategoryMapping())
}
