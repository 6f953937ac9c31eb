// Package report writes analysis reports as delimited snapshots.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
)

// WriteCSV saves a report with the given header row to path. Headers are
// written exactly as named so the snapshot round-trips losslessly.
func WriteCSV(path string, headers []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write report headers: %w", err)
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write report row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
