package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kmchl/Deidentification-App/internal/dataset"
	"github.com/kmchl/Deidentification-App/internal/dtypes"
)

var (
	detectInput  string
	detectOutput string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect column types of a dataset",
	Long: `Classify every column of a CSV file as int, float, date, bool,
factor, or string using parse-rate thresholds.

Examples:
  deidapp detect --input data.csv
  deidapp detect --input data.csv --output Type_Conversion_Report.csv`,

	Run: func(cmd *cobra.Command, args []string) {
		table, err := dataset.FromCSV(detectInput)
		if err != nil {
			log.Fatalf("Failed to load dataset: %v", err)
		}

		detector := dtypes.NewDetector(detectorThresholds(), zlog.Logger)
		types, err := detector.Detect(context.Background(), table)
		if err != nil {
			log.Fatalf("Type detection failed: %v", err)
		}

		fmt.Printf("%-30s %10s\n", "Column", "Type")
		fmt.Println(strings.Repeat("-", 41))
		for _, name := range table.Columns() {
			fmt.Printf("%-30s %10s\n", name, types[name])
		}

		if detectOutput != "" {
			if err := dtypes.SaveReport(detectOutput, table, types); err != nil {
				log.Fatalf("Failed to save type report: %v", err)
			}
			fmt.Printf("Type conversion report saved to %s\n", detectOutput)
		}
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().StringVar(&detectInput, "input", "",
		"Input dataset CSV (required)")
	detectCmd.Flags().StringVar(&detectOutput, "output", "",
		"Save the type report to a CSV file")

	detectCmd.MarkFlagRequired("input")
}
