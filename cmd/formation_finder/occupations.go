package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/jonathan/formation-finder/internal/observability"
	"github.com/jonathan/formation-finder/internal/types"
)

var occupationsJSON bool

var occupationsCmd = &cobra.Command{
	Use:   "occupations",
	Short: "List the supported occupations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		list := make([]types.OccupationInfo, 0, len(types.AllOccupations()))
		for _, o := range types.AllOccupations() {
			list = append(list, types.OccupationInfo{Slug: o, Label: o.Label()})
		}

		if occupationsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintOccupations(list)
		return nil
	},
}

func init() {
	occupationsCmd.Flags().BoolVar(&occupationsJSON, "json", false, "Print the list as JSON")
	rootCmd.AddCommand(occupationsCmd)
}
