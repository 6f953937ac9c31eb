package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// FromCSV loads a table from a comma-delimited file. The first row is the
// header; column names are cleaned of path separator characters.
func FromCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file)
}

// Read loads a table from CSV data.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err == io.EOF {
		return New(nil, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}

	names := make([]string, len(headers))
	cols := make(map[string][]string, len(headers))
	for i, header := range headers {
		names[i] = CleanName(header)
		cols[names[i]] = nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		for i, value := range record {
			cols[names[i]] = append(cols[names[i]], value)
		}
	}

	return New(names, cols)
}

// WriteCSV saves the table to a comma-delimited file with a header row.
func (t *Table) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(t.names); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	row := make([]string, len(t.names))
	for i := 0; i < t.rows; i++ {
		for j, name := range t.names {
			row[j] = t.cols[name][i]
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Align ensures the binned table carries every column of the original, in the
// original's column order. Columns missing from the binned table are copied
// over from the original untouched.
func Align(original, binned *Table) (*Table, error) {
	if original.Rows() != binned.Rows() {
		return nil, fmt.Errorf("original has %d rows, binned has %d", original.Rows(), binned.Rows())
	}

	names := original.Columns()
	cols := make(map[string][]string, len(names))
	kinds := make(map[string]Kind, len(names))
	for _, name := range names {
		if binned.HasColumn(name) {
			cols[name] = binned.cols[name]
			kinds[name] = binned.kinds[name]
		} else {
			cols[name] = original.cols[name]
			kinds[name] = original.kinds[name]
		}
	}

	aligned, err := New(names, cols)
	if err != nil {
		return nil, err
	}
	for name, kind := range kinds {
		aligned.kinds[name] = kind
	}
	return aligned, nil
}
