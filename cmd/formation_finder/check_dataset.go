package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/formation-finder/internal/catalog"
	"github.com/jonathan/formation-finder/internal/observability"
	"github.com/jonathan/formation-finder/internal/rules"
)

var (
	checkDatasetFile   string
	checkDatasetStrict bool
)

var checkDatasetCmd = &cobra.Command{
	Use:   "check-dataset",
	Short: "Validate a formation dataset file",
	Long: `Load a dataset file with the same strict schema the server uses and report how many rows
are usable. Without --file the dataset embedded in the binary is checked.

The report also lists occupations whose relevance rules or enrichment keywords are missing;
with --strict such a gap fails the command.`,
	RunE: runCheckDataset,
}

func init() {
	checkDatasetCmd.Flags().StringVarP(&checkDatasetFile, "file", "f", "", "Path to dataset JSON file (defaults to the embedded dataset)")
	checkDatasetCmd.Flags().BoolVar(&checkDatasetStrict, "strict", false, "Fail when an occupation has incomplete rules")
	rootCmd.AddCommand(checkDatasetCmd)
}

func runCheckDataset(cmd *cobra.Command, _ []string) error {
	cat, err := catalog.Load(checkDatasetFile)
	if err != nil {
		return fmt.Errorf("dataset check failed: %w", err)
	}

	source := checkDatasetFile
	if source == "" {
		source = "embedded"
	}
	missing := rules.Missing()

	observability.NewPrinter(cmd.OutOrStdout()).PrintDatasetReport(observability.DatasetReport{
		Source:   source,
		Version:  cat.Version,
		Entries:  cat.Len(),
		Excluded: cat.Excluded(),
		Missing:  missing,
	})

	if checkDatasetStrict && len(missing) > 0 {
		return fmt.Errorf("%d occupations have incomplete rules", len(missing))
	}
	return nil
}
