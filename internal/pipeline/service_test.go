package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/formation-finder/internal/catalog"
	"github.com/jonathan/formation-finder/internal/geo"
	"github.com/jonathan/formation-finder/internal/types"
)

type fakeGeocoder struct {
	result *geo.Result
	err    error
	last   geo.Query
}

func (f *fakeGeocoder) Geocode(_ context.Context, q geo.Query) (*geo.Result, error) {
	f.last = q
	return f.result, f.err
}

type fakeMatcher struct {
	records []types.TrainingRecord
	level   types.LevelFilter
}

func (f *fakeMatcher) Match(_ types.Occupation, _ types.ReferenceLocation, _ float64, level types.LevelFilter) []types.TrainingRecord {
	f.level = level
	return f.records
}

type fakeEnricher struct {
	records     []types.TrainingRecord
	calls       int
	jobKeywords []string
}

func (f *fakeEnricher) Enrich(_ context.Context, _ types.Occupation, _ types.ReferenceLocation,
	jobKeywords, _ []string, _ float64, _ int) []types.TrainingRecord {
	f.calls++
	f.jobKeywords = jobKeywords
	return f.records
}

type fakeLocator struct {
	coords map[string]*types.Coordinates
	calls  []string
}

func (f *fakeLocator) Locate(_ context.Context, city string) (*types.Coordinates, error) {
	f.calls = append(f.calls, city)
	c, ok := f.coords[city]
	if !ok {
		return nil, errors.New("lookup failed")
	}
	return c, nil
}

var parisResult = &geo.Result{Lat: 48.85, Lon: 2.35, Confidence: 0.9, Precision: geo.PrecisionMunicipality, Label: "Paris", City: "Paris"}

func datasetRecord(title string, km float64, level types.Level) types.TrainingRecord {
	return types.TrainingRecord{
		Title:        title,
		Organization: "Lycée agricole",
		City:         "Ville",
		DistanceKm:   km,
		Level:        level,
		Source:       types.SourceDataset,
		MatchScore:   types.DatasetMatchScore,
	}
}

func enrichmentRecord(title string, km float64, level types.Level) types.TrainingRecord {
	r := datasetRecord(title, km, level)
	r.Organization = "CFA"
	r.Source = types.SourceEnrichment
	r.MatchScore = types.EnrichmentMatchScore
	return r
}

func nearbyDataset(n int) []types.TrainingRecord {
	out := make([]types.TrainingRecord, n)
	for i := range out {
		out[i] = datasetRecord("Programme "+string(rune('A'+i)), float64(5+i), types.Level4)
	}
	return out
}

func TestSearch_DatasetSufficientSkipsEnrichment(t *testing.T) {
	enricher := &fakeEnricher{}
	geocoder := &fakeGeocoder{result: parisResult}
	svc := NewService(Deps{
		Matcher:  &fakeMatcher{records: nearbyDataset(6)},
		Geocoder: geocoder,
		Enricher: enricher,
	}, DefaultOptions(), nil)

	resp, err := svc.Search(context.Background(), types.SearchRequest{Occupation: "agent-silo", City: "Paris"})
	require.NoError(t, err)

	assert.Equal(t, 0, enricher.calls)
	assert.False(t, resp.Enriched)
	assert.Len(t, resp.TrainingRecords, 6)
	assert.Equal(t, 6, resp.DatasetCount)
	assert.Equal(t, "Agent de silo", resp.Occupation)
	assert.Equal(t, "Paris", resp.ReferenceLocation)
	assert.Equal(t, types.LevelFilterAll, resp.Level)
	assert.Equal(t, geo.KindCity, geocoder.last.Kind)
}

func TestSearch_ThinDatasetIsEnrichedAndMerged(t *testing.T) {
	dataset := []types.TrainingRecord{datasetRecord("Bac Pro CGEA", 30, types.Level4)}
	enricher := &fakeEnricher{records: []types.TrainingRecord{
		enrichmentRecord("BTSA ACSE", 12, types.Level5),
		enrichmentRecord("Bac Pro stockage", 45, types.Level4),
	}}
	svc := NewService(Deps{
		Matcher:  &fakeMatcher{records: dataset},
		Geocoder: &fakeGeocoder{result: parisResult},
		Enricher: enricher,
	}, DefaultOptions(), nil)

	resp, err := svc.Search(context.Background(), types.SearchRequest{Occupation: "Agent de silo", City: "Paris", Level: "all"})
	require.NoError(t, err)

	assert.Equal(t, 1, enricher.calls)
	assert.Contains(t, enricher.jobKeywords, "silo")
	assert.True(t, resp.Enriched)
	require.Len(t, resp.TrainingRecords, 3)
	assert.Equal(t, "BTSA ACSE", resp.TrainingRecords[0].Title)
	assert.Equal(t, "Bac Pro CGEA", resp.TrainingRecords[1].Title)
	assert.Equal(t, 1, resp.DatasetCount)
	assert.Equal(t, 2, resp.EnrichmentCount)
}

func TestSearch_LevelFilterAppliesToEnrichment(t *testing.T) {
	matcher := &fakeMatcher{}
	enricher := &fakeEnricher{records: []types.TrainingRecord{
		enrichmentRecord("BTSA ACSE", 12, types.Level5),
		enrichmentRecord("Bac Pro stockage", 45, types.Level4),
		enrichmentRecord("Formation silo", 20, types.LevelNotApplicable),
	}}
	svc := NewService(Deps{
		Matcher:  matcher,
		Geocoder: &fakeGeocoder{result: parisResult},
		Enricher: enricher,
	}, DefaultOptions(), nil)

	resp, err := svc.Search(context.Background(), types.SearchRequest{Occupation: "agent-silo", City: "Paris", Level: "4"})
	require.NoError(t, err)

	assert.Equal(t, types.LevelFilter("4"), matcher.level)
	require.Len(t, resp.TrainingRecords, 1)
	assert.Equal(t, "Bac Pro stockage", resp.TrainingRecords[0].Title)
}

func TestSearch_EmptyEnrichmentStillSucceeds(t *testing.T) {
	svc := NewService(Deps{
		Matcher:  &fakeMatcher{records: []types.TrainingRecord{datasetRecord("Bac Pro CGEA", 30, types.Level4)}},
		Geocoder: &fakeGeocoder{result: parisResult},
		Enricher: &fakeEnricher{},
	}, DefaultOptions(), nil)

	resp, err := svc.Search(context.Background(), types.SearchRequest{Occupation: "agent-silo", City: "Paris"})
	require.NoError(t, err)
	assert.True(t, resp.Enriched)
	assert.Len(t, resp.TrainingRecords, 1)
}

func TestSearch_EnrichmentWithoutCredentials(t *testing.T) {
	svc := NewService(Deps{
		Matcher:            &fakeMatcher{},
		Geocoder:           &fakeGeocoder{result: parisResult},
		MissingCredentials: []string{"GOOGLE_SEARCH_API_KEY"},
	}, DefaultOptions(), nil)

	_, err := svc.Search(context.Background(), types.SearchRequest{Occupation: "agent-silo", City: "Paris"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"GOOGLE_SEARCH_API_KEY"}, cfgErr.Missing)
}

func TestSearch_EnrichmentDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.EnrichmentEnabled = false
	svc := NewService(Deps{
		Matcher:  &fakeMatcher{},
		Geocoder: &fakeGeocoder{result: parisResult},
	}, opts, nil)

	resp, err := svc.Search(context.Background(), types.SearchRequest{Occupation: "agent-silo", City: "Paris"})
	require.NoError(t, err)
	assert.False(t, resp.Enriched)
	assert.NotNil(t, resp.TrainingRecords)
	assert.Empty(t, resp.TrainingRecords)
}

func TestSearch_ValidationErrors(t *testing.T) {
	svc := NewService(Deps{Matcher: &fakeMatcher{}, Geocoder: &fakeGeocoder{result: parisResult}}, DefaultOptions(), nil)

	tests := []struct {
		name  string
		req   types.SearchRequest
		field string
	}{
		{name: "missing occupation", req: types.SearchRequest{City: "Paris"}, field: "occupation"},
		{name: "missing city", req: types.SearchRequest{Occupation: "agent-silo", City: "  "}, field: "city"},
		{name: "bad level", req: types.SearchRequest{Occupation: "agent-silo", City: "Paris", Level: "7"}, field: "level"},
		{name: "unknown occupation", req: types.SearchRequest{Occupation: "astronaute", City: "Paris"}, field: "occupation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestSearch_ReferenceCityFailures(t *testing.T) {
	tests := []struct {
		name     string
		geocoder *fakeGeocoder
		check    func(t *testing.T, err error)
	}{
		{
			name:     "geocoder unreachable",
			geocoder: &fakeGeocoder{err: errors.New("connection refused")},
			check: func(t *testing.T, err error) {
				var upErr *UpstreamError
				assert.ErrorAs(t, err, &upErr)
			},
		},
		{
			name:     "no match",
			geocoder: &fakeGeocoder{},
			check: func(t *testing.T, err error) {
				var nfErr *NotFoundError
				assert.ErrorAs(t, err, &nfErr)
			},
		},
		{
			name:     "low confidence",
			geocoder: &fakeGeocoder{result: &geo.Result{Lat: 1, Lon: 1, Confidence: 0.2}},
			check: func(t *testing.T, err error) {
				var nfErr *NotFoundError
				assert.ErrorAs(t, err, &nfErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(Deps{Matcher: &fakeMatcher{}, Geocoder: tt.geocoder}, DefaultOptions(), nil)
			_, err := svc.Search(context.Background(), types.SearchRequest{Occupation: "agent-silo", City: "Nulle-Part"})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestSearch_WithDatasetCatalog(t *testing.T) {
	c, err := catalog.Parse("test", []byte(`{"version":"t","formations":[
		{"title":"Bac Pro CGEA — stockage céréales","organization":"Lycée agricole","city":"Saint-Denis","latitude":48.94,"longitude":2.35,"level":4},
		{"title":"CAP équitation","organization":"Centre équestre","city":"Montreuil","latitude":48.895,"longitude":2.35,"level":3}
	]}`))
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.RadiusKm = 50
	opts.EnrichmentEnabled = false
	svc := NewService(Deps{
		Matcher:  catalog.NewMatcher(c, 0, nil),
		Geocoder: &fakeGeocoder{result: parisResult},
	}, opts, nil)

	resp, err := svc.Search(context.Background(), types.SearchRequest{Occupation: "agent-silo", City: "Paris"})
	require.NoError(t, err)
	require.Len(t, resp.TrainingRecords, 1)
	assert.Equal(t, "Bac Pro CGEA — stockage céréales", resp.TrainingRecords[0].Title)
}

func TestSearch_EmitsProgress(t *testing.T) {
	var steps []string
	opts := DefaultOptions()
	opts.OnProgress = func(e ProgressEvent) { steps = append(steps, e.Step) }
	svc := NewService(Deps{
		Matcher:  &fakeMatcher{},
		Geocoder: &fakeGeocoder{result: parisResult},
		Enricher: &fakeEnricher{},
	}, opts, nil)

	_, err := svc.Search(context.Background(), types.SearchRequest{Occupation: "agent-silo", City: "Paris"})
	require.NoError(t, err)
	assert.Equal(t, []string{StepResolveLocation, StepDatasetMatch, StepEnrichment, StepMerge}, steps)
}

func TestPlace_SequentialLookupOncePerCity(t *testing.T) {
	locator := &fakeLocator{coords: map[string]*types.Coordinates{
		"Chartres": {Lat: 48.44, Lon: 1.49},
	}}
	svc := NewService(Deps{Locator: locator}, DefaultOptions(), nil)

	placed := &types.Coordinates{Lat: 1, Lon: 1}
	req := types.PlaceRequest{TrainingRecords: []types.TrainingRecord{
		{Title: "A", City: "Chartres"},
		{Title: "B", City: "CHARTRES"},
		{Title: "C", City: "Dreux", Coordinates: placed},
		{Title: "D", City: "Atlantide"},
		{Title: "E", City: types.NotProvided},
	}}

	resp, err := svc.Place(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"Chartres", "Atlantide"}, locator.calls)
	assert.Equal(t, 2, resp.Located)
	require.NotNil(t, resp.TrainingRecords[0].Coordinates)
	require.NotNil(t, resp.TrainingRecords[1].Coordinates)
	assert.Equal(t, 48.44, resp.TrainingRecords[1].Coordinates.Lat)
	assert.Same(t, placed, resp.TrainingRecords[2].Coordinates)
	assert.Nil(t, resp.TrainingRecords[3].Coordinates)
	assert.Nil(t, resp.TrainingRecords[4].Coordinates)
	assert.Nil(t, req.TrainingRecords[0].Coordinates, "input records are not modified")
}

func TestPlace_Errors(t *testing.T) {
	svc := NewService(Deps{}, DefaultOptions(), nil)

	_, err := svc.Place(context.Background(), types.PlaceRequest{})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "training_records", vErr.Field)

	_, err = svc.Place(context.Background(), types.PlaceRequest{TrainingRecords: []types.TrainingRecord{}})
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestOccupations(t *testing.T) {
	svc := NewService(Deps{}, DefaultOptions(), nil)
	list := svc.Occupations()
	require.Len(t, list, 12)
	assert.Equal(t, types.OccupationAgentSilo, list[0].Slug)
	assert.Equal(t, "Agent de silo", list[0].Label)
}
