// Package integrity measures the information loss a binning transformation
// inflicts on a categorical dataset, column by column.
package integrity

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"

	"github.com/kmchl/Deidentification-App/internal/dataset"
	"github.com/kmchl/Deidentification-App/internal/report"
)

var (
	// ErrSchemaMismatch means the original and binned tables do not carry
	// the same columns.
	ErrSchemaMismatch = errors.New("original and binned tables must have the same columns")

	// ErrNotCategorical means a column holds non-categorical data and
	// cannot be assessed.
	ErrNotCategorical = errors.New("column is not categorical")
)

// ReportRow is the per-column entropy comparison. Entropies are in bits.
type ReportRow struct {
	Variable        string
	OriginalEntropy float64
	BinnedEntropy   float64
	EntropyLoss     float64
	PercentageLoss  float64
}

// ReportHeaders are the column names used when a report is saved.
var ReportHeaders = []string{
	"Variable",
	"Original Entropy (bits)",
	"Binned Entropy (bits)",
	"Entropy Loss (bits)",
	"Percentage Loss (%)",
}

// Assessor compares the Shannon entropy of each column before and after
// binning. The report is computed once and cached; Assess forces a
// recomputation.
type Assessor struct {
	original *dataset.Table
	binned   *dataset.Table

	assessed    bool
	rows        []ReportRow
	overallLoss float64
}

// NewAssessor validates the table pair and returns an assessor over it. Both
// tables must carry the same columns and every column must be categorical.
func NewAssessor(original, binned *dataset.Table) (*Assessor, error) {
	if !original.SameColumns(binned) {
		return nil, ErrSchemaMismatch
	}
	for _, col := range original.Columns() {
		if !original.IsCategorical(col) {
			return nil, fmt.Errorf("%w: %q in the original table is %s", ErrNotCategorical, col, original.Kind(col))
		}
		if !binned.IsCategorical(col) {
			return nil, fmt.Errorf("%w: %q in the binned table is %s", ErrNotCategorical, col, binned.Kind(col))
		}
	}

	return &Assessor{original: original, binned: binned}, nil
}

// Entropy computes the base-2 Shannon entropy of the value distribution.
// Empty and single-valued distributions have zero entropy.
func Entropy(values []string) float64 {
	if len(values) == 0 {
		return 0
	}

	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	entropy := 0.0
	n := float64(len(values))
	for _, count := range counts {
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}

	return entropy
}

// Assess computes the integrity report, replacing any cached result.
func (a *Assessor) Assess() {
	columns := a.original.Columns()
	rows := make([]ReportRow, 0, len(columns))
	losses := make([]float64, 0, len(columns))

	for _, col := range columns {
		originalValues, _ := a.original.Column(col)
		binnedValues, _ := a.binned.Column(col)

		originalEntropy := Entropy(originalValues)
		binnedEntropy := Entropy(binnedValues)
		entropyLoss := originalEntropy - binnedEntropy

		percentageLoss := 0.0
		if originalEntropy != 0 {
			percentageLoss = entropyLoss / originalEntropy * 100
		}
		percentageLoss = round(percentageLoss, 2)

		rows = append(rows, ReportRow{
			Variable:        col,
			OriginalEntropy: round(originalEntropy, 6),
			BinnedEntropy:   round(binnedEntropy, 6),
			EntropyLoss:     round(entropyLoss, 6),
			PercentageLoss:  percentageLoss,
		})
		losses = append(losses, percentageLoss)
	}

	overall := 0.0
	if len(losses) > 0 {
		mean, err := stats.Mean(losses)
		if err == nil {
			overall = round(mean, 2)
		}
	}

	a.rows = rows
	a.overallLoss = overall
	a.assessed = true
}

// Report returns a copy of the per-column report, computing it first if no
// assessment has run.
func (a *Assessor) Report() []ReportRow {
	if !a.assessed {
		a.Assess()
	}
	out := make([]ReportRow, len(a.rows))
	copy(out, a.rows)
	return out
}

// OverallLoss returns the mean percentage loss across columns, computing the
// report first if no assessment has run.
func (a *Assessor) OverallLoss() float64 {
	if !a.assessed {
		a.Assess()
	}
	return a.overallLoss
}

// SaveReport writes the integrity report to a CSV file.
func (a *Assessor) SaveReport(path string) error {
	rows := a.Report()

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = []string{
			row.Variable,
			strconv.FormatFloat(row.OriginalEntropy, 'f', -1, 64),
			strconv.FormatFloat(row.BinnedEntropy, 'f', -1, 64),
			strconv.FormatFloat(row.EntropyLoss, 'f', -1, 64),
			strconv.FormatFloat(row.PercentageLoss, 'f', -1, 64),
		}
	}

	return report.WriteCSV(path, ReportHeaders, records)
}

func round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
