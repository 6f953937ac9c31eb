// Package dtypes classifies table columns into concrete value types using
// deterministic parse-rate thresholds.
package dtypes

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kmchl/Deidentification-App/internal/dataset"
	"github.com/kmchl/Deidentification-App/internal/report"
)

// Type is a detected column type.
type Type string

const (
	TypeInt    Type = "int"
	TypeFloat  Type = "float"
	TypeDate   Type = "date"
	TypeBool   Type = "bool"
	TypeFactor Type = "factor"
	TypeString Type = "string"
)

// dateLayouts are tried in order when probing for date columns.
var dateLayouts = []string{
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-01-2006 15:04",
	"02-01-2006",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006-01-02 15:04:05Z07:00",
}

// boolValues are the accepted spellings of a boolean column.
var boolValues = map[string]bool{
	"0": true, "1": true,
	"true": true, "false": true,
	"True": true, "False": true,
}

// Thresholds control how aggressively columns are classified.
type Thresholds struct {
	// Numeric is the fraction of values that must parse as numbers for a
	// column to be numeric.
	Numeric float64

	// Date is the fraction of values that must parse under one date
	// layout for a column to be a date.
	Date float64

	// FactorRatio is the maximum distinct/total ratio for a factor.
	FactorRatio float64

	// FactorUnique is the maximum distinct value count for a factor.
	FactorUnique int
}

// DefaultThresholds returns the classifier defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Numeric:      0.9,
		Date:         0.5,
		FactorRatio:  0.5,
		FactorUnique: 50,
	}
}

// ReportHeaders are the column names used when a type report is saved.
var ReportHeaders = []string{"Column", "Type"}

// Detector classifies columns and records factor code mappings.
type Detector struct {
	thresholds Thresholds
	logger     zerolog.Logger

	mu       sync.Mutex
	mappings map[string]map[int]string
}

// NewDetector returns a detector with the given thresholds.
func NewDetector(thresholds Thresholds, logger zerolog.Logger) *Detector {
	return &Detector{
		thresholds: thresholds,
		logger:     logger,
		mappings:   make(map[string]map[int]string),
	}
}

// DetectColumn classifies a single column's values.
func (d *Detector) DetectColumn(name string, values []string) Type {
	nonEmpty := 0
	distinct := make(map[string]struct{})
	for _, v := range values {
		if v == "" {
			continue
		}
		nonEmpty++
		distinct[v] = struct{}{}
	}

	if nonEmpty == 0 {
		d.logger.Debug().Str("column", name).Msg("empty column, defaulting to string")
		return TypeString
	}

	total := float64(nonEmpty)

	// Numeric first: the parse rate decides, the integral check picks
	// between int and float.
	numericCount := 0
	integral := true
	for _, v := range values {
		if v == "" {
			continue
		}
		switch {
		case fastIsInt(v):
			numericCount++
		case fastIsFloat(v):
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				continue
			}
			numericCount++
			if f != math.Trunc(f) {
				integral = false
			}
		}
	}
	if float64(numericCount)/total > d.thresholds.Numeric {
		if integral {
			return TypeInt
		}
		return TypeFloat
	}

	for _, layout := range dateLayouts {
		dateCount := 0
		for _, v := range values {
			if v == "" {
				continue
			}
			if _, err := time.Parse(layout, v); err == nil {
				dateCount++
			}
		}
		if float64(dateCount)/total > d.thresholds.Date {
			d.logger.Debug().Str("column", name).Str("layout", layout).Msg("date column detected")
			return TypeDate
		}
	}

	isBool := true
	for v := range distinct {
		if !boolValues[v] {
			isBool = false
			break
		}
	}
	if isBool {
		return TypeBool
	}

	if float64(len(distinct))/total < d.thresholds.FactorRatio && len(distinct) < d.thresholds.FactorUnique {
		return TypeFactor
	}

	return TypeString
}

// fastIsInt quickly checks if a string is a plain base-10 integer.
func fastIsInt(str string) bool {
	if len(str) == 0 {
		return false
	}

	i := 0
	if str[0] == '-' || str[0] == '+' {
		if len(str) == 1 {
			return false
		}
		i = 1
	}

	for ; i < len(str); i++ {
		c := str[i]
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// fastIsFloat quickly checks if a string is likely a float.
func fastIsFloat(str string) bool {
	if len(str) == 0 {
		return false
	}

	hasDot := false
	hasExp := false
	i := 0

	if str[0] == '-' || str[0] == '+' {
		if len(str) == 1 {
			return false
		}
		i = 1
	}

	for ; i < len(str); i++ {
		c := str[i]
		switch {
		case c >= '0' && c <= '9':
			// Continue
		case c == '.':
			if hasDot || hasExp {
				return false
			}
			hasDot = true
		case c == 'e' || c == 'E':
			if hasExp || i == len(str)-1 {
				return false
			}
			hasExp = true
		default:
			return false
		}
	}
	return hasDot || hasExp
}

// Detect classifies every column of the table concurrently. The returned map
// holds one entry per column name; output is deterministic regardless of
// scheduling.
func (d *Detector) Detect(ctx context.Context, t *dataset.Table) (map[string]Type, error) {
	columns := t.Columns()
	detected := make([]Type, len(columns))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range columns {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			values, err := t.Column(name)
			if err != nil {
				return err
			}
			detected[i] = d.DetectColumn(name, values)
			d.logger.Info().Str("column", name).Str("type", string(detected[i])).Msg("column type assessed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	types := make(map[string]Type, len(columns))
	for i, name := range columns {
		types[name] = detected[i]
	}
	return types, nil
}

// Apply marks every column of the table with its detected kind and encodes
// factor columns as integer codes, recording the code-to-label mapping. It
// returns a new table; the input is untouched.
func (d *Detector) Apply(t *dataset.Table, types map[string]Type, encodeFactors bool) (*dataset.Table, error) {
	out := t
	var err error

	for _, name := range t.Columns() {
		switch types[name] {
		case TypeInt, TypeFloat:
			out, err = setKind(out, name, dataset.KindNumeric)
		case TypeDate:
			out, err = setKind(out, name, dataset.KindDate)
		case TypeFactor:
			if encodeFactors {
				out, err = d.encodeFactor(out, name)
			}
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// CategoryMapping returns the code-to-label mapping recorded for each factor
// column encoded by Apply.
func (d *Detector) CategoryMapping() map[string]map[int]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]map[int]string, len(d.mappings))
	for col, mapping := range d.mappings {
		copied := make(map[int]string, len(mapping))
		for code, label := range mapping {
			copied[code] = label
		}
		out[col] = copied
	}
	return out
}

// SaveReport writes a type conversion report to a CSV file.
func SaveReport(path string, t *dataset.Table, types map[string]Type) error {
	columns := t.Columns()
	records := make([][]string, len(columns))
	for i, name := range columns {
		records[i] = []string{name, string(types[name])}
	}
	return report.WriteCSV(path, ReportHeaders, records)
}

func (d *Detector) encodeFactor(t *dataset.Table, name string) (*dataset.Table, error) {
	values, err := t.Column(name)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0)
	seen := make(map[string]int)
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = 0
			labels = append(labels, v)
		}
	}
	sort.Strings(labels)

	mapping := make(map[int]string, len(labels))
	for code, label := range labels {
		seen[label] = code
		mapping[code] = label
	}

	encoded := make([]string, len(values))
	for i, v := range values {
		encoded[i] = strconv.Itoa(seen[v])
	}

	d.mu.Lock()
	d.mappings[name] = mapping
	d.mu.Unlock()

	return t.WithColumn(name, encoded, dataset.KindCategorical)
}

func setKind(t *dataset.Table, name string, kind dataset.Kind) (*dataset.Table, error) {
	values, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	return t.WithColumn(name, values, kind)
}
