// Package ranking merges the dataset and enrichment results and decides when enrichment
// is worth running.
package ranking

import (
	"math"
	"sort"

	"github.com/jonathan/formation-finder/internal/parsing"
	"github.com/jonathan/formation-finder/internal/types"
)

// MissingDistanceKm stands in for a record without a usable distance when averaging.
const MissingDistanceKm = 999.0

// Default policy thresholds.
const (
	DefaultMinResults       = 5
	DefaultMaxAvgDistanceKm = 60.0
)

// Key is the dedup identity of a record: its title, organization and city reduced to
// alphanumerics.
func Key(r *types.TrainingRecord) string {
	return parsing.CompactKey(r.Title) + "|" + parsing.CompactKey(r.Organization) + "|" + parsing.CompactKey(r.City)
}

// Merge combines dataset and enrichment results. Dataset records are inserted first, so
// when both sources describe the same program the dataset record is the one kept. The
// result is ordered by distance.
func Merge(dataset, enrichment []types.TrainingRecord) []types.TrainingRecord {
	merged := make([]types.TrainingRecord, 0, len(dataset)+len(enrichment))
	seen := make(map[string]bool, len(dataset)+len(enrichment))

	for _, list := range [][]types.TrainingRecord{dataset, enrichment} {
		for i := range list {
			key := Key(&list[i])
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, list[i])
		}
	}

	SortByDistance(merged)
	return merged
}

// SortByDistance orders records nearest first. Equal distances keep the higher match
// score first, then their current relative order.
func SortByDistance(records []types.TrainingRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].DistanceKm != records[j].DistanceKm {
			return records[i].DistanceKm < records[j].DistanceKm
		}
		return records[i].MatchScore > records[j].MatchScore
	})
}

// ShouldEnrich reports whether the dataset results are too few or too far away. Either
// condition alone triggers enrichment; an empty result always does.
func ShouldEnrich(dataset []types.TrainingRecord, minResults int, maxAvgDistanceKm float64) bool {
	if len(dataset) == 0 || len(dataset) < minResults {
		return true
	}
	return AverageDistance(dataset) > maxAvgDistanceKm
}

// AverageDistance is the mean distance of records, counting a missing distance as
// MissingDistanceKm.
func AverageDistance(records []types.TrainingRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var total float64
	for _, r := range records {
		d := r.DistanceKm
		if math.IsNaN(d) || d < 0 {
			d = MissingDistanceKm
		}
		total += d
	}
	return total / float64(len(records))
}
