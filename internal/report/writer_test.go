package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	headers := []string{"Variable", "Percentage Loss (%)"}
	rows := [][]string{
		{"Age", "12.5"},
		{"City, State", "0"},
	}

	require.NoError(t, WriteCSV(path, headers, rows))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, headers, records[0])
	assert.Equal(t, rows[0], records[1])
	assert.Equal(t, rows[1], records[2])
}

func TestWriteCSVBadPath(t *testing.T) {
	err := WriteCSV(filepath.Join(t.TempDir(), "missing", "out.csv"), []string{"A"}, nil)
	assert.Error(t, err)
}
