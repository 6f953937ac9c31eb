// Package anonymity locates column combinations whose value groups are small
// enough to re-identify individuals in a generalized dataset.
package anonymity

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/kmchl/Deidentification-App/internal/dataset"
	"github.com/kmchl/Deidentification-App/internal/report"
)

var (
	// ErrRowMismatch means the original and binned tables differ in length.
	ErrRowMismatch = errors.New("original and binned tables must have the same number of rows")

	// ErrInvalidBounds means the requested combination size range is
	// not usable.
	ErrInvalidBounds = errors.New("invalid combination size bounds")

	// ErrUnknownColumn means a requested candidate column is not present
	// in the binned table.
	ErrUnknownColumn = errors.New("column not present in the binned table")

	// ErrNoResults means Results was called before any scan ran.
	ErrNoResults = errors.New("no results found: run Scan first")
)

// progressInterval is how many combinations are processed between progress
// callbacks and cancellation checks.
const progressInterval = 1000

// groupKeySep joins column values into a group key. Unit separator keeps
// multi-column keys unambiguous for ordinary category labels.
const groupKeySep = "\x1f"

// Result records how many value groups of one column combination fall below
// the k threshold. Fewer small groups means the combination reveals less.
type Result struct {
	Combination []string
	SmallGroups int
}

// ResultHeaders are the column names used when results are saved.
var ResultHeaders = []string{"Combination", "Small_Groups"}

// ProgressFunc receives the number of combinations processed so far and the
// total to process. It is invoked at most once per progressInterval
// combinations, plus once on completion.
type ProgressFunc func(processed, total int)

// Options bound one scan invocation.
type Options struct {
	// K is the group size threshold: groups with fewer than K rows count
	// as small. Must be at least 1.
	K int

	// MinCombSize is the smallest combination size to evaluate.
	// Zero means 1.
	MinCombSize int

	// MaxCombSize is the largest combination size to evaluate. Zero means
	// all candidate columns; larger values are clamped to that.
	MaxCombSize int

	// Columns restricts the candidate column set. Nil means every column
	// of the binned table, in table order.
	Columns []string

	// Progress, when set, receives periodic scan progress.
	Progress ProgressFunc
}

// Scanner enumerates column combinations of the binned table and counts the
// groups below the k threshold for each. Results are cached on the scanner
// until the next scan.
type Scanner struct {
	original *dataset.Table
	binned   *dataset.Table

	scanned bool
	results []Result
}

// NewScanner validates the table pair and returns a scanner over it. The
// original table is kept for row-count validation and future comparison; only
// the binned table is grouped.
func NewScanner(original, binned *dataset.Table) (*Scanner, error) {
	if original.Rows() != binned.Rows() {
		return nil, fmt.Errorf("%w: original has %d, binned has %d",
			ErrRowMismatch, original.Rows(), binned.Rows())
	}
	return &Scanner{original: original, binned: binned}, nil
}

// TotalCombinations reports how many combinations a scan over n candidate
// columns with the given size bounds will evaluate, without materializing
// them.
func TotalCombinations(n, minSize, maxSize int) int {
	total := 0
	for r := minSize; r <= maxSize; r++ {
		total += combin.Binomial(n, r)
	}
	return total
}

// Scan evaluates every column combination within the configured size bounds
// and returns one result per combination, sorted ascending by small-group
// count. Ties keep enumeration order: smaller combinations first, then
// lexicographic order over the candidate columns. The context is checked at
// the progress cadence, so long scans can be cancelled cooperatively.
func (s *Scanner) Scan(ctx context.Context, opts Options) ([]Result, error) {
	columns := opts.Columns
	if columns == nil {
		columns = s.binned.Columns()
	} else {
		for _, col := range columns {
			if !s.binned.HasColumn(col) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
			}
		}
	}

	minSize := opts.MinCombSize
	if minSize == 0 {
		minSize = 1
	}
	if minSize < 1 {
		return nil, fmt.Errorf("%w: min_comb_size must be at least 1, got %d", ErrInvalidBounds, minSize)
	}

	maxSize := opts.MaxCombSize
	if maxSize == 0 || maxSize > len(columns) {
		maxSize = len(columns)
	}
	if maxSize < minSize {
		return nil, fmt.Errorf("%w: max_comb_size %d is below min_comb_size %d", ErrInvalidBounds, maxSize, minSize)
	}

	if opts.K < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidBounds, opts.K)
	}

	// Fetch candidate columns once; combinations only index into these.
	values := make([][]string, len(columns))
	for i, col := range columns {
		values[i], _ = s.binned.Column(col)
	}

	total := TotalCombinations(len(columns), minSize, maxSize)
	results := make([]Result, 0, total)
	processed := 0

	var key strings.Builder
	for size := minSize; size <= maxSize; size++ {
		gen := combin.NewCombinationGenerator(len(columns), size)
		idx := make([]int, size)

		for gen.Next() {
			processed++
			if processed%progressInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				if opts.Progress != nil {
					opts.Progress(processed, total)
				}
			}

			gen.Combination(idx)

			groups := make(map[string]int)
			for row := 0; row < s.binned.Rows(); row++ {
				key.Reset()
				for j, col := range idx {
					if j > 0 {
						key.WriteString(groupKeySep)
					}
					key.WriteString(values[col][row])
				}
				groups[key.String()]++
			}

			smallGroups := 0
			for _, count := range groups {
				if count < opts.K {
					smallGroups++
				}
			}

			combination := make([]string, size)
			for j, col := range idx {
				combination[j] = columns[col]
			}
			results = append(results, Result{Combination: combination, SmallGroups: smallGroups})
		}
	}

	if opts.Progress != nil {
		opts.Progress(total, total)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SmallGroups < results[j].SmallGroups
	})

	s.results = results
	s.scanned = true

	return s.copyResults(), nil
}

// Results returns a copy of the cached scan results. It fails if no scan has
// run on this scanner yet.
func (s *Scanner) Results() ([]Result, error) {
	if !s.scanned {
		return nil, ErrNoResults
	}
	return s.copyResults(), nil
}

// SaveResults writes the cached results to a CSV file.
func (s *Scanner) SaveResults(path string) error {
	results, err := s.Results()
	if err != nil {
		return err
	}

	records := make([][]string, len(results))
	for i, res := range results {
		records[i] = []string{
			strings.Join(res.Combination, ", "),
			strconv.Itoa(res.SmallGroups),
		}
	}

	return report.WriteCSV(path, ResultHeaders, records)
}

func (s *Scanner) copyResults() []Result {
	out := make([]Result, len(s.results))
	for i, res := range s.results {
		combination := make([]string, len(res.Combination))
		copy(combination, res.Combination)
		out[i] = Result{Combination: combination, SmallGroups: res.SmallGroups}
	}
	return out
}
