package enrichment

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/formation-finder/internal/geo"
	"github.com/jonathan/formation-finder/internal/research"
	"github.com/jonathan/formation-finder/internal/types"
)

// Defaults for the enrichment stage.
const (
	DefaultHardCapKm   = 200.0
	DefaultLimit       = 10
	DefaultParallelism = 6
)

// Placer resolves a candidate's position with decreasing specificity, or returns nil.
type Placer interface {
	Resolve(ctx context.Context, address, organization, city string) *geo.Result
}

// Enricher finds programs on the web for an occupation around a reference location.
type Enricher struct {
	searcher    research.Searcher
	summarizer  Summarizer
	urls        URLChecker
	placer      Placer
	parallelism int
	logger      *zap.Logger
}

// NewEnricher wires the enrichment collaborators. parallelism bounds the number of
// candidates verified at once.
func NewEnricher(searcher research.Searcher, summarizer Summarizer, urls URLChecker, placer Placer, parallelism int, logger *zap.Logger) *Enricher {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		searcher:    searcher,
		summarizer:  summarizer,
		urls:        urls,
		placer:      placer,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Enrich returns verified programs within hardCapKm of ref, nearest first, at most limit.
// Upstream failures shrink the result; they are never returned as errors.
func (e *Enricher) Enrich(ctx context.Context, occupation types.Occupation, ref types.ReferenceLocation,
	jobKeywords, banned []string, hardCapKm float64, limit int) []types.TrainingRecord {
	if hardCapKm <= 0 {
		hardCapKm = DefaultHardCapKm
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	city := ref.City
	if city == "" {
		city = ref.Label
	}
	log := e.logger.With(zap.String("occupation", string(occupation)), zap.String("city", city))

	snippets := research.SearchAll(ctx, e.searcher, research.TrainingQueries(occupation.Label(), city))
	if len(snippets) == 0 {
		log.Info("enrichment search returned nothing")
		return []types.TrainingRecord{}
	}

	raw, err := e.summarizer.Summarize(ctx, snippets, occupation, city)
	if err != nil {
		log.Warn("summarizer failed, enrichment yields nothing", zap.Error(err))
		return []types.TrainingRecord{}
	}

	candidates := e.screen(raw, occupation, jobKeywords, banned, log)

	// Each goroutine owns one slot, so the batch keeps the summarizer's order.
	verified := make([]*types.TrainingRecord, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, c := range candidates {
		g.Go(func() error {
			if rec, ok := e.verify(gctx, c, ref, hardCapKm, log); ok {
				verified[i] = &rec
			}
			return nil
		})
	}
	_ = g.Wait()

	records := make([]types.TrainingRecord, 0, len(verified))
	for _, rec := range verified {
		if rec != nil {
			records = append(records, *rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DistanceKm < records[j].DistanceKm
	})
	if len(records) > limit {
		records = records[:limit]
	}

	log.Info("enrichment done",
		zap.Int("snippets", len(snippets)),
		zap.Int("candidates", len(raw)),
		zap.Int("screened", len(candidates)),
		zap.Int("kept", len(records)))
	return records
}

// screen applies the checks that need no network: completeness, occupation coherence and
// banned keywords.
func (e *Enricher) screen(raw []RawCandidate, occupation types.Occupation, jobKeywords, banned []string, log *zap.Logger) []RawCandidate {
	kept := make([]RawCandidate, 0, len(raw))
	for _, c := range raw {
		if !c.Complete() {
			log.Debug("candidate rejected", zap.String("title", c.Title), zap.String("reason", "incomplete"))
			continue
		}
		text := c.Text()
		if !isCoherent(text, jobKeywords, occupation.Label()) {
			log.Debug("candidate rejected", zap.String("title", c.Title), zap.String("reason", "incoherent"))
			continue
		}
		if isBanned(text, banned) {
			log.Debug("candidate rejected", zap.String("title", c.Title), zap.String("reason", "banned"))
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// verify runs the network checks for one candidate and builds its record.
func (e *Enricher) verify(ctx context.Context, c RawCandidate, ref types.ReferenceLocation, hardCapKm float64, log *zap.Logger) (types.TrainingRecord, bool) {
	if ok, reason := e.urls.CheckPair(ctx, c.URL1, c.URL2); !ok {
		log.Debug("candidate rejected", zap.String("title", c.Title), zap.String("reason", reason),
			zap.String("url1", c.URL1), zap.String("url2", c.URL2))
		return types.TrainingRecord{}, false
	}

	place := e.placer.Resolve(ctx, c.Address, c.Organization, c.City)
	if place == nil {
		log.Debug("candidate rejected", zap.String("title", c.Title), zap.String("reason", "unplaced"))
		return types.TrainingRecord{}, false
	}

	distance := geo.RoundKm(geo.DistanceKm(ref.Lat, ref.Lon, place.Lat, place.Lon))
	if distance < 0 || distance > hardCapKm {
		log.Debug("candidate rejected", zap.String("title", c.Title), zap.String("reason", "out_of_range"),
			zap.Float64("distance_km", distance))
		return types.TrainingRecord{}, false
	}

	return toRecord(c, place, distance), true
}

func toRecord(c RawCandidate, place *geo.Result, distance float64) types.TrainingRecord {
	return types.TrainingRecord{
		Title:          c.Title,
		Organization:   c.Organization,
		City:           c.City,
		Region:         types.NotProvided,
		Coordinates:    &types.Coordinates{Lat: place.Lat, Lon: place.Lon},
		DistanceKm:     distance,
		RNCPCode:       types.NotProvided,
		Level:          InferLevel(c.DiplomaHint),
		Modality:       types.ModalityUnspecified,
		Apprenticeship: types.NotProvided,
		Category:       types.GenericCategory,
		Website:        c.URL1,
		References:     []string{c.URL1, c.URL2},
		Source:         types.SourceEnrichment,
		MatchScore:     types.EnrichmentMatchScore,
	}
}
