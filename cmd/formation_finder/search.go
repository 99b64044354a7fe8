package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/formation-finder/internal/observability"
	"github.com/jonathan/formation-finder/internal/pipeline"
	"github.com/jonathan/formation-finder/internal/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search training programs near a city",
	Long: `Run one formation query from the command line and print the ranked programs.

The occupation may be given as a slug (agent-silo) or as its label ("Agent de silo").`,
	Example: `  formation_finder search -o agent-silo -c Chartres
  formation_finder search -o "Responsable de silo" -c Dreux -l 5 --json`,
	RunE: runSearch,
}

var (
	searchOccupation string
	searchCity       string
	searchLevel      string
	searchJSON       bool
	searchAll        bool
	searchNoEnrich   bool
)

func init() {
	searchCmd.Flags().StringVarP(&searchOccupation, "occupation", "o", "", "Occupation slug or label (required)")
	searchCmd.Flags().StringVarP(&searchCity, "city", "c", "", "Reference city (required)")
	searchCmd.Flags().StringVarP(&searchLevel, "level", "l", "all", "Diploma level: 3, 4, 5, 6 or all")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print the response as JSON")
	searchCmd.Flags().BoolVar(&searchAll, "all", false, "List every result instead of the first few")
	searchCmd.Flags().BoolVar(&searchNoEnrich, "no-enrich", false, "Use the static dataset only")

	_ = searchCmd.MarkFlagRequired("occupation")
	_ = searchCmd.MarkFlagRequired("city")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if searchNoEnrich {
		cfg.EnrichmentDisabled = true
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	printer := observability.NewPrinter(cmd.OutOrStdout())
	var onProgress pipeline.ProgressCallback
	if cfg.Verbose && !searchJSON {
		onProgress = func(e pipeline.ProgressEvent) { printer.PrintStep(e.Step, e.Message) }
	}

	svc, cleanup, err := buildService(ctx, cfg, onProgress, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := svc.Search(ctx, types.SearchRequest{
		Occupation: searchOccupation,
		City:       searchCity,
		Level:      searchLevel,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	printer.PrintSearchResponse(resp, searchAll)
	return nil
}
