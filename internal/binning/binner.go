// Package binning generalizes numeric columns into labeled categorical
// ranges, trading resolution for anonymity.
package binning

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/kmchl/Deidentification-App/internal/dataset"
)

var (
	// ErrNotNumeric means a column selected for binning does not parse
	// as numbers.
	ErrNotNumeric = errors.New("column is not numeric")

	// ErrInvalidBins means the requested bin count is not usable.
	ErrInvalidBins = errors.New("bin count must be at least 1")
)

// Method selects how bin edges are placed.
type Method int

const (
	// EqualWidth splits the value range into bins of equal span.
	EqualWidth Method = iota

	// EqualFrequency places edges on quantiles so bins hold roughly equal
	// row counts.
	EqualFrequency
)

// ParseMethod maps a method name to its Method.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "equal-width", "width":
		return EqualWidth, nil
	case "equal-frequency", "frequency", "quantile":
		return EqualFrequency, nil
	default:
		return 0, fmt.Errorf("unknown binning method %q", name)
	}
}

// DefaultBins returns the default bin count for a column with the given
// number of distinct values: 10, or the distinct count when lower.
func DefaultBins(distinct int) int {
	if distinct < 1 {
		return 1
	}
	if distinct < 10 {
		return distinct
	}
	return 10
}

// Column bins one column's values into labeled ranges. Empty values stay
// empty. The bin count is clamped to the number of distinct values.
func Column(values []string, bins int, method Method) ([]string, error) {
	if bins < 1 {
		return nil, ErrInvalidBins
	}

	numbers := make([]float64, 0, len(values))
	distinct := make(map[float64]struct{})
	for _, v := range values {
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q", ErrNotNumeric, v)
		}
		numbers = append(numbers, f)
		distinct[f] = struct{}{}
	}

	if len(numbers) == 0 {
		out := make([]string, len(values))
		return out, nil
	}

	if bins > len(distinct) {
		bins = len(distinct)
	}

	edges, err := binEdges(numbers, bins, method)
	if err != nil {
		return nil, err
	}
	labels := edgeLabels(edges)

	out := make([]string, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		f, _ := strconv.ParseFloat(v, 64)
		out[i] = labels[bucket(edges, f)]
	}
	return out, nil
}

// Table bins the named columns of the table, replacing each with its
// categorical range labels. Bin counts come from the bins map, falling back
// to DefaultBins for columns not listed.
func Table(t *dataset.Table, columns []string, bins map[string]int, method Method) (*dataset.Table, error) {
	out := t
	for _, name := range columns {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}

		count, ok := bins[name]
		if !ok {
			count = DefaultBins(distinctCount(values))
		}

		binned, err := Column(values, count, method)
		if err != nil {
			return nil, fmt.Errorf("failed to bin column %q: %w", name, err)
		}

		out, err = out.WithColumn(name, binned, dataset.KindCategorical)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// binEdges computes bins+1 ascending edges covering the data. Degenerate
// edges (constant data, repeated quantiles) collapse into fewer bins.
func binEdges(numbers []float64, bins int, method Method) ([]float64, error) {
	min, _ := stats.Min(numbers)
	max, _ := stats.Max(numbers)

	edges := make([]float64, 0, bins+1)
	switch method {
	case EqualFrequency:
		edges = append(edges, min)
		for i := 1; i < bins; i++ {
			q, err := stats.Percentile(numbers, float64(i)*100/float64(bins))
			if err != nil {
				return nil, fmt.Errorf("failed to compute bin quantile: %w", err)
			}
			edges = append(edges, q)
		}
		edges = append(edges, max)
	default:
		width := (max - min) / float64(bins)
		for i := 0; i < bins; i++ {
			edges = append(edges, min+float64(i)*width)
		}
		edges = append(edges, max)
	}

	// Drop duplicate edges so every bin has positive width.
	deduped := edges[:1]
	for _, e := range edges[1:] {
		if e > deduped[len(deduped)-1] {
			deduped = append(deduped, e)
		}
	}
	if len(deduped) == 1 {
		deduped = append(deduped, deduped[0])
	}
	return deduped, nil
}

// bucket returns the bin index for a value. The last bin is closed on both
// ends.
func bucket(edges []float64, v float64) int {
	for i := 1; i < len(edges)-1; i++ {
		if v < edges[i] {
			return i - 1
		}
	}
	return len(edges) - 2
}

func edgeLabels(edges []float64) []string {
	labels := make([]string, len(edges)-1)
	for i := range labels {
		labels[i] = formatEdge(edges[i]) + "-" + formatEdge(edges[i+1])
	}
	return labels
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func distinctCount(values []string) int {
	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		distinct[v] = struct{}{}
	}
	return len(distinct)
}
