package dataset

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	table, err := Read(strings.NewReader("A,B\n1,x\n2,y\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, table.Columns())
	assert.Equal(t, 2, table.Rows())

	values, err := table.Column("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, values)
}

func TestReadCSVCleansHeaders(t *testing.T) {
	table, err := Read(strings.NewReader("Age/Group\nyoung\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"AgeGroup"}, table.Columns())
}

func TestReadEmptyInput(t *testing.T) {
	table, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Rows())
	assert.Empty(t, table.Columns())
}

func TestCSVRoundTrip(t *testing.T) {
	table, err := New([]string{"A", "B"}, map[string][]string{
		"A": {"1", "2", "3"},
		"B": {"x", "y", "z"},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, table.WriteCSV(path))

	loaded, err := FromCSV(path)
	require.NoError(t, err)
	assert.Equal(t, table.Columns(), loaded.Columns())
	assert.Equal(t, table.Rows(), loaded.Rows())

	for _, col := range table.Columns() {
		want, _ := table.Column(col)
		got, _ := loaded.Column(col)
		assert.Equal(t, want, got)
	}
}

func TestAlign(t *testing.T) {
	original, err := New([]string{"A", "B"}, map[string][]string{
		"A": {"1", "2"},
		"B": {"x", "y"},
	})
	require.NoError(t, err)

	// Binned only covers B, in a different column order context.
	binned, err := New([]string{"B"}, map[string][]string{
		"B": {"lo", "hi"},
	})
	require.NoError(t, err)

	aligned, err := Align(original, binned)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, aligned.Columns())

	a, _ := aligned.Column("A")
	assert.Equal(t, []string{"1", "2"}, a)
	b, _ := aligned.Column("B")
	assert.Equal(t, []string{"lo", "hi"}, b)
}

func TestAlignRowMismatch(t *testing.T) {
	original, _ := New([]string{"A"}, map[string][]string{"A": {"1", "2"}})
	binned, _ := New([]string{"A"}, map[string][]string{"A": {"1"}})

	_, err := Align(original, binned)
	assert.Error(t, err)
}
