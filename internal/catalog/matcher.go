package catalog

import (
	"sort"

	"go.uber.org/zap"

	"github.com/jonathan/formation-finder/internal/geo"
	"github.com/jonathan/formation-finder/internal/parsing"
	"github.com/jonathan/formation-finder/internal/rules"
	"github.com/jonathan/formation-finder/internal/types"
)

// DefaultMaxResults caps the number of dataset matches returned for one query.
const DefaultMaxResults = 30

// Matcher ranks catalog entries for a query.
type Matcher struct {
	catalog    *Catalog
	maxResults int
	logger     *zap.Logger
}

// NewMatcher creates a Matcher over c. maxResults <= 0 uses DefaultMaxResults.
func NewMatcher(c *Catalog, maxResults int, logger *zap.Logger) *Matcher {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		catalog:    c,
		maxResults: maxResults,
		logger:     logger,
	}
}

type candidate struct {
	entry    *Entry
	distance float64
}

// Match returns the catalog entries admissible for occupation within radiusKm of ref,
// restricted to level, nearest first.
//
// When some admissible entries sit in the query city itself, only those are kept;
// otherwise the whole admissible set is used so a city without a listed establishment
// still gets its neighbors.
func (m *Matcher) Match(occupation types.Occupation, ref types.ReferenceLocation, radiusKm float64, level types.LevelFilter) []types.TrainingRecord {
	ruleSet := rules.For(occupation)

	entries := m.catalog.Entries()
	admissible := make([]candidate, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if !rules.IsAdmissible(e.Title, ruleSet) {
			continue
		}
		d := geo.RoundKm(geo.DistanceKm(ref.Lat, ref.Lon, e.Coordinates.Lat, e.Coordinates.Lon))
		admissible = append(admissible, candidate{entry: e, distance: d})
	}

	pool := narrowToCity(admissible, ref.City)

	matched := make([]candidate, 0, len(pool))
	for _, c := range pool {
		if c.distance > radiusKm {
			continue
		}
		if !level.Accepts(c.entry.Level) {
			continue
		}
		matched = append(matched, c)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].distance < matched[j].distance
	})
	if len(matched) > m.maxResults {
		matched = matched[:m.maxResults]
	}

	m.logger.Debug("dataset match",
		zap.String("occupation", string(occupation)),
		zap.Int("admissible", len(admissible)),
		zap.Int("in_city", len(pool)),
		zap.Int("matched", len(matched)))

	records := make([]types.TrainingRecord, 0, len(matched))
	for _, c := range matched {
		records = append(records, toRecord(c.entry, c.distance))
	}
	return records
}

func narrowToCity(candidates []candidate, city string) []candidate {
	key := parsing.CompactKey(city)
	if key == "" {
		return candidates
	}

	var sameCity []candidate
	for _, c := range candidates {
		if parsing.CompactKey(c.entry.City) == key {
			sameCity = append(sameCity, c)
		}
	}
	if len(sameCity) == 0 {
		return candidates
	}
	return sameCity
}

func toRecord(e *Entry, distance float64) types.TrainingRecord {
	coords := e.Coordinates
	rec := types.TrainingRecord{
		Title:          e.Title,
		Organization:   e.Organization,
		City:           e.City,
		Region:         e.Region,
		Coordinates:    &coords,
		DistanceKm:     distance,
		RNCPCode:       e.RNCPCode,
		Level:          e.Level,
		Modality:       e.Modality,
		Apprenticeship: e.Apprenticeship,
		Category:       e.Category,
		Website:        e.Website,
		Source:         types.SourceDataset,
		MatchScore:     types.DatasetMatchScore,
	}
	if e.Website != "" {
		rec.References = []string{e.Website}
	}
	return rec
}
