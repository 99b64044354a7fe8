// Package observability provides the process logger and formatted output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/formation-finder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", fit(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %s │\n", fit(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// fit pads or truncates s to exactly width runes.
func fit(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n <= width {
		return s + strings.Repeat(" ", width-n)
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// PrintSearchResponse outputs the ranked programs of a search. Unless all is set, only
// the first few records are listed.
func (p *Printer) PrintSearchResponse(resp *types.SearchResponse, all bool) {
	if resp == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Occupation: %s\n", resp.Occupation))
	sb.WriteString(fmt.Sprintf("Near:       %s\n", resp.ReferenceLocation))
	sb.WriteString(fmt.Sprintf("Level:      %s\n", resp.Level))
	sb.WriteString(fmt.Sprintf("Results:    %d (%d dataset, %d web)\n",
		len(resp.TrainingRecords), resp.DatasetCount, resp.EnrichmentCount))
	if resp.Enriched {
		sb.WriteString("Web enrichment ran for this query\n")
	}

	if len(resp.TrainingRecords) == 0 {
		sb.WriteString("\nNo training program found.\n")
		p.printBox("FORMATIONS", sb.String())
		return
	}

	sb.WriteString("\n")
	count := len(resp.TrainingRecords)
	if !all {
		count = min(count, maxItemsToShow)
	}
	for i := 0; i < count; i++ {
		writeRecord(&sb, i+1, &resp.TrainingRecords[i])
	}
	if count < len(resp.TrainingRecords) {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(resp.TrainingRecords)-count))
	}

	p.printBox("FORMATIONS", sb.String())
}

func writeRecord(sb *strings.Builder, n int, r *types.TrainingRecord) {
	marker := ""
	if r.Source == types.SourceEnrichment {
		marker = " [web]"
	}
	sb.WriteString(fmt.Sprintf("%2d. %s%s\n", n, r.Title, marker))
	sb.WriteString(fmt.Sprintf("    %s, %s\n", r.Organization, r.City))
	sb.WriteString(fmt.Sprintf("    %.0f km · niveau %s\n", r.DistanceKm, r.Level))
	if r.Website != "" {
		sb.WriteString(fmt.Sprintf("    %s\n", r.Website))
	}
}

// PrintStep outputs one progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStep(step, message string) {
	fmt.Fprintf(p.out, "[%s] %s\n", step, message)
}

// PrintOccupations lists the supported occupations.
func (p *Printer) PrintOccupations(list []types.OccupationInfo) {
	var sb strings.Builder
	for _, o := range list {
		sb.WriteString(fmt.Sprintf("%-24s %s\n", o.Slug, o.Label))
	}
	if len(list) == 0 {
		sb.WriteString("(none)\n")
	}
	p.printBox("OCCUPATIONS", sb.String())
}

// DatasetReport summarizes a dataset check.
type DatasetReport struct {
	Source   string
	Version  string
	Entries  int
	Excluded int
	// Missing lists occupations without a complete rule table.
	Missing []types.Occupation
}

// PrintDatasetReport outputs the result of a dataset check.
func (p *Printer) PrintDatasetReport(report DatasetReport) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Source:   %s\n", report.Source))
	if report.Version != "" {
		sb.WriteString(fmt.Sprintf("Version:  %s\n", report.Version))
	}
	sb.WriteString(fmt.Sprintf("Entries:  %d\n", report.Entries))
	sb.WriteString(fmt.Sprintf("Excluded: %d (missing or invalid coordinates)\n", report.Excluded))

	if len(report.Missing) == 0 {
		sb.WriteString("\nRule tables complete for every occupation\n")
	} else {
		sb.WriteString("\nOccupations without complete rules:\n")
		for _, o := range report.Missing {
			sb.WriteString(fmt.Sprintf("  • %s\n", o))
		}
	}

	p.printBox("DATASET CHECK", sb.String())
}
