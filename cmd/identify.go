package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kmchl/Deidentification-App/internal/anonymity"
	"github.com/kmchl/Deidentification-App/internal/dataset"
)

var (
	identifyOriginal string
	identifyBinned   string
	identifyK        int
	identifyMinSize  int
	identifyMaxSize  int
	identifyColumns  []string
	identifyOutput   string
	identifyTop      int
)

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Scan a binned dataset for k-anonymity small groups",
	Long: `Enumerate column combinations of the binned dataset and count the
value groups with fewer than k members. Combinations with the fewest small
groups surface first: they give the least re-identification leverage.

Examples:
  deidapp identify --original data.csv --binned binned.csv -k 5
  deidapp identify --original data.csv --binned binned.csv -k 5 --max-size 3
  deidapp identify --original data.csv --binned binned.csv -k 5 --columns Age_Bin,Zip_Bin`,

	Run: func(cmd *cobra.Command, args []string) {
		if identifyK == 0 {
			identifyK = appCfg.K
		}
		if identifyMinSize == 0 {
			identifyMinSize = appCfg.MinCombSize
		}
		if identifyMaxSize == 0 {
			identifyMaxSize = appCfg.MaxCombSize
		}

		original, err := dataset.FromCSV(identifyOriginal)
		if err != nil {
			log.Fatalf("Failed to load original dataset: %v", err)
		}
		binned, err := dataset.FromCSV(identifyBinned)
		if err != nil {
			log.Fatalf("Failed to load binned dataset: %v", err)
		}

		scanner, err := anonymity.NewScanner(original, binned)
		if err != nil {
			log.Fatalf("Scan setup failed: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		bar := progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetDescription("[cyan][reset] Scanning combinations..."),
			progressbar.OptionSetWidth(20),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Println()
			}),
		)

		var columns []string
		if len(identifyColumns) > 0 {
			columns = identifyColumns
		}

		results, err := scanner.Scan(ctx, anonymity.Options{
			K:           identifyK,
			MinCombSize: identifyMinSize,
			MaxCombSize: identifyMaxSize,
			Columns:     columns,
			Progress: func(processed, total int) {
				if bar.GetMax() != total {
					bar.ChangeMax(total)
				}
				bar.Set(processed)
			},
		})
		if err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		bar.Finish()

		fmt.Printf("Analyzed %s combinations over %s rows (k=%d)\n\n",
			humanize.Comma(int64(len(results))),
			humanize.Comma(int64(binned.Rows())), identifyK)

		shown := len(results)
		if identifyTop > 0 && identifyTop < shown {
			shown = identifyTop
		}

		fmt.Printf("%-60s %12s\n", "Combination", "Small Groups")
		fmt.Println(strings.Repeat("-", 74))
		for _, res := range results[:shown] {
			fmt.Printf("%-60s %12d\n", strings.Join(res.Combination, ", "), res.SmallGroups)
		}
		if shown < len(results) {
			fmt.Printf("... %d more (use --top 0 to show all)\n", len(results)-shown)
		}

		if identifyOutput != "" {
			if err := scanner.SaveResults(identifyOutput); err != nil {
				log.Fatalf("Failed to save results: %v", err)
			}
			fmt.Printf("k-anonymity results saved to %s\n", identifyOutput)
		}
	},
}

func init() {
	rootCmd.AddCommand(identifyCmd)
	identifyCmd.Flags().StringVar(&identifyOriginal, "original", "",
		"Original dataset CSV (required)")
	identifyCmd.Flags().StringVar(&identifyBinned, "binned", "",
		"Binned dataset CSV (required)")
	identifyCmd.Flags().IntVarP(&identifyK, "k", "k", 0,
		"Group size threshold: groups smaller than k are flagged (default from config)")
	identifyCmd.Flags().IntVar(&identifyMinSize, "min-size", 0,
		"Minimum combination size (default from config)")
	identifyCmd.Flags().IntVar(&identifyMaxSize, "max-size", 0,
		"Maximum combination size (default: all columns)")
	identifyCmd.Flags().StringSliceVar(&identifyColumns, "columns", nil,
		"Candidate columns (default: all binned columns)")
	identifyCmd.Flags().StringVar(&identifyOutput, "output", "",
		"Save the results to a CSV file")
	identifyCmd.Flags().IntVar(&identifyTop, "top", 20,
		"Show only the first N combinations (0 shows all)")

	identifyCmd.MarkFlagRequired("original")
	identifyCmd.MarkFlagRequired("binned")
}
