package dataset

import (
	"errors"
	"fmt"
	"regexp"
)

// Kind describes the role a column plays in the de-identification pipeline.
// Freshly loaded CSV columns are categorical until the type detector or the
// binner says otherwise.
type Kind int

const (
	KindCategorical Kind = iota
	KindNumeric
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindDate:
		return "date"
	default:
		return "categorical"
	}
}

var ErrUnknownColumn = errors.New("column not present in table")

var columnNameCleaner = regexp.MustCompile(`[\\/]`)

// CleanName strips path separator characters from a column name so reports
// can be saved under filenames derived from columns.
func CleanName(name string) string {
	return columnNameCleaner.ReplaceAllString(name, "")
}

// Table is an immutable, column-oriented snapshot of tabular data. Column
// order is preserved from construction and every column holds exactly one
// value per row.
type Table struct {
	names []string
	kinds map[string]Kind
	cols  map[string][]string
	rows  int
}

// New builds a table from an ordered column name list and per-column values.
// All columns must have the same length. Input slices are copied.
func New(names []string, cols map[string][]string) (*Table, error) {
	t := &Table{
		names: make([]string, 0, len(names)),
		kinds: make(map[string]Kind, len(names)),
		cols:  make(map[string][]string, len(names)),
	}

	for i, name := range names {
		values, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
		}
		if i == 0 {
			t.rows = len(values)
		} else if len(values) != t.rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", name, len(values), t.rows)
		}
		if _, dup := t.cols[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}

		copied := make([]string, len(values))
		copy(copied, values)
		t.names = append(t.names, name)
		t.cols[name] = copied
		t.kinds[name] = KindCategorical
	}

	return t, nil
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	return t.rows
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Column returns the values of the named column in row order.
func (t *Table) Column(name string) ([]string, error) {
	values, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]string, len(values))
	copy(out, values)
	return out, nil
}

// Kind returns the kind recorded for the named column. Unknown columns are
// reported as categorical.
func (t *Table) Kind(name string) Kind {
	return t.kinds[name]
}

// SetKind records the kind of an existing column.
func (t *Table) SetKind(name string, kind Kind) error {
	if !t.HasColumn(name) {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	t.kinds[name] = kind
	return nil
}

// IsCategorical reports whether the named column holds discrete categories.
func (t *Table) IsCategorical(name string) bool {
	return t.kinds[name] == KindCategorical
}

// Select returns a new table containing only the named columns, in the given
// order.
func (t *Table) Select(names []string) (*Table, error) {
	sub, err := New(names, t.cols)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		sub.kinds[name] = t.kinds[name]
	}
	return sub, nil
}

// WithColumn returns a copy of the table with the named column replaced (or
// appended when absent) by the given values and kind.
func (t *Table) WithColumn(name string, values []string, kind Kind) (*Table, error) {
	if t.rows != len(values) && len(t.names) > 0 {
		return nil, fmt.Errorf("column %q has %d values, expected %d", name, len(values), t.rows)
	}

	names := t.Columns()
	cols := make(map[string][]string, len(names)+1)
	for _, existing := range names {
		cols[existing] = t.cols[existing]
	}
	if !t.HasColumn(name) {
		names = append(names, name)
	}
	cols[name] = values

	out, err := New(names, cols)
	if err != nil {
		return nil, err
	}
	for _, existing := range t.names {
		out.kinds[existing] = t.kinds[existing]
	}
	out.kinds[name] = kind
	return out, nil
}

// AsCategorical returns a copy of the table with every column treated as
// categorical, regardless of detected kinds. Used when raw values should be
// compared against their generalized counterparts.
func (t *Table) AsCategorical() *Table {
	out, _ := New(t.names, t.cols)
	return out
}

// SameColumns reports whether both tables carry the same column names in the
// same order.
func (t *Table) SameColumns(other *Table) bool {
	if len(t.names) != len(other.names) {
		return false
	}
	for i, name := range t.names {
		if other.names[i] != name {
			return false
		}
	}
	return true
}
