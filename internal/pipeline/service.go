// Package pipeline orchestrates a formation query: resolve the reference city, match the
// static dataset, enrich from web search when the dataset answer is thin, then merge.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/formation-finder/internal/geo"
	"github.com/jonathan/formation-finder/internal/parsing"
	"github.com/jonathan/formation-finder/internal/ranking"
	"github.com/jonathan/formation-finder/internal/rules"
	"github.com/jonathan/formation-finder/internal/types"
)

// Defaults for Options.
const (
	DefaultRadiusKm       = 80.0
	DefaultCityConfidence = 0.4
)

// Progress steps
const (
	StepResolveLocation = "resolve_location"
	StepDatasetMatch    = "dataset_match"
	StepEnrichment      = "enrichment"
	StepMerge           = "merge"
)

// ProgressEvent represents a progress update during a search.
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// ProgressCallback is called when search progress occurs.
type ProgressCallback func(event ProgressEvent)

// Options tunes the search policy.
type Options struct {
	RadiusKm          float64
	HardCapKm         float64
	MinResults        int
	MaxAvgDistanceKm  float64
	EnrichLimit       int
	EnrichmentEnabled bool
	OnProgress        ProgressCallback
}

// DefaultOptions returns the production policy.
func DefaultOptions() Options {
	return Options{
		RadiusKm:          DefaultRadiusKm,
		HardCapKm:         200,
		MinResults:        ranking.DefaultMinResults,
		MaxAvgDistanceKm:  ranking.DefaultMaxAvgDistanceKm,
		EnrichLimit:       10,
		EnrichmentEnabled: true,
	}
}

// DatasetMatcher selects static dataset programs around a reference location.
type DatasetMatcher interface {
	Match(occupation types.Occupation, ref types.ReferenceLocation, radiusKm float64, level types.LevelFilter) []types.TrainingRecord
}

// Enricher finds verified programs from external search.
type Enricher interface {
	Enrich(ctx context.Context, occupation types.Occupation, ref types.ReferenceLocation,
		jobKeywords, banned []string, hardCapKm float64, limit int) []types.TrainingRecord
}

// Deps are the collaborators of a Service. Enricher and Locator may be nil when their
// credentials or endpoints are not configured; the operations that need them then fail
// with a ConfigError instead of the process refusing to start.
type Deps struct {
	Matcher  DatasetMatcher
	Geocoder geo.Geocoder
	Enricher Enricher
	Locator  geo.CityLocator

	// MissingCredentials names the settings whose absence disabled the enricher.
	MissingCredentials []string
}

// Service answers formation queries.
type Service struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
}

// NewService creates a service and logs any gap in the per-occupation rule tables.
func NewService(deps Deps, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.RadiusKm <= 0 {
		opts.RadiusKm = DefaultRadiusKm
	}
	if missing := rules.Missing(); len(missing) > 0 {
		logger.Warn("occupations without complete rule tables, filtering is fail-open for them",
			zap.Any("occupations", missing))
	}
	return &Service{deps: deps, opts: opts, logger: logger}
}

// Search runs a full query. The only errors are invalid parameters, an unknown or
// unreachable reference city, and missing enrichment credentials when enrichment is
// needed; every other failure shrinks the result instead.
func (s *Service) Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	req.Occupation = strings.TrimSpace(req.Occupation)
	req.City = strings.TrimSpace(req.City)
	req.Level = strings.TrimSpace(req.Level)

	if err := req.Validate(); err != nil {
		return nil, toValidationError(err)
	}

	occupation, ok := types.ParseOccupation(req.Occupation)
	if !ok {
		return nil, &ValidationError{Field: "occupation", Message: fmt.Sprintf("unknown occupation %q", req.Occupation)}
	}

	level := types.LevelFilter(req.Level)
	if level == "" {
		level = types.LevelFilterAll
	}

	log := s.logger.With(zap.String("occupation", string(occupation)), zap.String("city", req.City))

	ref, err := s.resolveReference(ctx, req.City)
	if err != nil {
		return nil, err
	}
	s.emit(StepResolveLocation, fmt.Sprintf("Resolved %q to %s (%.4f, %.4f)", req.City, ref.Label, ref.Lat, ref.Lon), 1)

	dataset := s.deps.Matcher.Match(occupation, ref, s.opts.RadiusKm, level)
	s.emit(StepDatasetMatch, fmt.Sprintf("Matched %d dataset programs within %.0f km", len(dataset), s.opts.RadiusKm), len(dataset))

	var extra []types.TrainingRecord
	enriched := false
	if s.opts.EnrichmentEnabled && ranking.ShouldEnrich(dataset, s.opts.MinResults, s.opts.MaxAvgDistanceKm) {
		if s.deps.Enricher == nil {
			return nil, &ConfigError{
				Missing: s.deps.MissingCredentials,
				Message: "web enrichment is needed for this query but search or LLM credentials are not configured",
			}
		}
		log.Debug("enriching dataset answer",
			zap.Int("dataset_count", len(dataset)),
			zap.Float64("average_km", ranking.AverageDistance(dataset)))

		profile, _ := rules.EnrichmentProfile(occupation)
		found := s.deps.Enricher.Enrich(ctx, occupation, ref, profile.JobKeywords, profile.Banned,
			s.opts.HardCapKm, s.opts.EnrichLimit)
		extra = filterLevel(found, level)
		enriched = true
		s.emit(StepEnrichment, fmt.Sprintf("Kept %d of %d enrichment programs", len(extra), len(found)), len(extra))
	}

	merged := ranking.Merge(dataset, extra)
	s.emit(StepMerge, fmt.Sprintf("Returning %d programs", len(merged)), len(merged))

	resp := &types.SearchResponse{
		Occupation:        occupation.Label(),
		ReferenceLocation: ref.Label,
		Level:             level,
		Enriched:          enriched,
		TrainingRecords:   merged,
	}
	for i := range merged {
		if merged[i].Source == types.SourceDataset {
			resp.DatasetCount++
		} else {
			resp.EnrichmentCount++
		}
	}

	log.Info("search completed",
		zap.Int("results", len(merged)),
		zap.Int("dataset_count", resp.DatasetCount),
		zap.Int("enrichment_count", resp.EnrichmentCount),
		zap.Bool("enriched", enriched))
	return resp, nil
}

// Place fills missing coordinates of already-ranked records with the city locator.
// Lookups are sequential and made once per distinct city; a city that cannot be
// located leaves its records without coordinates.
func (s *Service) Place(ctx context.Context, req types.PlaceRequest) (*types.PlaceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, toValidationError(err)
	}
	if s.deps.Locator == nil {
		return nil, &ConfigError{Message: "city locator endpoint is not configured"}
	}

	records := make([]types.TrainingRecord, len(req.TrainingRecords))
	copy(records, req.TrainingRecords)

	seen := make(map[string]*types.Coordinates)
	located := 0
	for i := range records {
		r := &records[i]
		if r.Coordinates != nil {
			continue
		}
		city := strings.TrimSpace(r.City)
		if city == "" || city == types.NotProvided {
			continue
		}

		key := parsing.CompactKey(city)
		coords, done := seen[key]
		if !done {
			var err error
			coords, err = s.deps.Locator.Locate(ctx, city)
			if err != nil {
				s.logger.Warn("city lookup failed", zap.String("city", city), zap.Error(err))
				coords = nil
			}
			seen[key] = coords
		}
		if coords != nil {
			c := *coords
			r.Coordinates = &c
			located++
		}
	}

	return &types.PlaceResponse{TrainingRecords: records, Located: located}, nil
}

// Occupations lists the supported occupations in display order.
func (s *Service) Occupations() []types.OccupationInfo {
	all := types.AllOccupations()
	out := make([]types.OccupationInfo, 0, len(all))
	for _, o := range all {
		out = append(out, types.OccupationInfo{Slug: o, Label: o.Label()})
	}
	return out
}

func (s *Service) resolveReference(ctx context.Context, city string) (types.ReferenceLocation, error) {
	res, err := s.deps.Geocoder.Geocode(ctx, geo.Query{Text: city, Kind: geo.KindCity})
	if err != nil {
		return types.ReferenceLocation{}, &UpstreamError{Service: "geocoder", Cause: err}
	}
	if res == nil || res.Confidence < DefaultCityConfidence {
		return types.ReferenceLocation{}, &NotFoundError{What: "city", Query: city}
	}

	ref := types.ReferenceLocation{Lat: res.Lat, Lon: res.Lon, Label: res.Label, City: res.City}
	if ref.Label == "" {
		ref.Label = city
	}
	if ref.City == "" {
		ref.City = city
	}
	return ref, nil
}

func (s *Service) emit(step, message string, count int) {
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(ProgressEvent{Step: step, Message: message, Count: count})
	}
}

func filterLevel(records []types.TrainingRecord, level types.LevelFilter) []types.TrainingRecord {
	out := make([]types.TrainingRecord, 0, len(records))
	for _, r := range records {
		if level.Accepts(r.Level) {
			out = append(out, r)
		}
	}
	return out
}

// toValidationError reports the first failing field under its JSON name.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error(), Cause: err}
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	if field == "trainingrecords" {
		field = "training_records"
	}
	msg := "is required"
	switch fe.Tag() {
	case "min":
		msg = fmt.Sprintf("must be at least %s characters", fe.Param())
	case "oneof":
		msg = fmt.Sprintf("must be one of %s", fe.Param())
	}
	return &ValidationError{Field: field, Message: msg, Cause: err}
}
