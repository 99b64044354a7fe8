package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/formation-finder/internal/pipeline"
	"github.com/jonathan/formation-finder/internal/server/ratelimit"
	"github.com/jonathan/formation-finder/internal/types"
)

type fakeService struct {
	searchResp *types.SearchResponse
	searchErr  error
	lastSearch types.SearchRequest
	placeResp  *types.PlaceResponse
	placeErr   error
	lastPlace  types.PlaceRequest
}

func (f *fakeService) Search(_ context.Context, req types.SearchRequest) (*types.SearchResponse, error) {
	f.lastSearch = req
	return f.searchResp, f.searchErr
}

func (f *fakeService) Place(_ context.Context, req types.PlaceRequest) (*types.PlaceResponse, error) {
	f.lastPlace = req
	return f.placeResp, f.placeErr
}

func (f *fakeService) Occupations() []types.OccupationInfo {
	return []types.OccupationInfo{{Slug: types.OccupationAgentSilo, Label: "Agent de silo"}}
}

func newTestServer(t *testing.T, svc Service, rl *ratelimit.Config) *Server {
	t.Helper()
	if rl == nil {
		rl = &ratelimit.Config{Enabled: false}
	}
	s, err := New(Config{Port: 0, RateLimit: rl, RequestTimeout: 5 * time.Second}, svc, nil)
	require.NoError(t, err)
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func do(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	msg, _ := resp["error"].(string)
	return msg
}

func TestNew_RequiresService(t *testing.T) {
	_, err := New(Config{}, nil, nil)
	assert.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeService{}, nil)

	w := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestSearchEndpoint_Post(t *testing.T) {
	svc := &fakeService{searchResp: &types.SearchResponse{
		Occupation:        "Agent de silo",
		ReferenceLocation: "Chartres",
		Level:             types.LevelFilterAll,
		TrainingRecords: []types.TrainingRecord{
			{Title: "Bac Pro CGEA", City: "Chartres", DistanceKm: 2, Source: types.SourceDataset},
		},
		DatasetCount: 1,
	}}
	s := newTestServer(t, svc, nil)

	w := do(s, http.MethodPost, "/formations", `{"occupation":"agent-silo","city":"Chartres","level":"4"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, types.SearchRequest{Occupation: "agent-silo", City: "Chartres", Level: "4"}, svc.lastSearch)

	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.TrainingRecords, 1)
	assert.Equal(t, "Bac Pro CGEA", resp.TrainingRecords[0].Title)
	assert.Equal(t, "Chartres", resp.ReferenceLocation)
}

func TestSearchEndpoint_QueryParameters(t *testing.T) {
	svc := &fakeService{searchResp: &types.SearchResponse{TrainingRecords: []types.TrainingRecord{}}}
	s := newTestServer(t, svc, nil)

	w := do(s, http.MethodGet, "/formations?occupation=agent-silo&city=Dreux&level=all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.SearchRequest{Occupation: "agent-silo", City: "Dreux", Level: "all"}, svc.lastSearch)
}

func TestSearchEndpoint_InvalidJSON(t *testing.T) {
	s := newTestServer(t, &fakeService{}, nil)

	w := do(s, http.MethodPost, "/formations", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "invalid request body")
}

func TestSearchEndpoint_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "missing parameter",
			err:     &pipeline.ValidationError{Field: "city", Message: "is required"},
			status:  http.StatusBadRequest,
			message: "validation error: city - is required",
		},
		{
			name:    "unknown city",
			err:     &pipeline.NotFoundError{What: "city", Query: "Nulle-Part"},
			status:  http.StatusNotFound,
			message: `city not found: "Nulle-Part"`,
		},
		{
			name:    "unconfigured enrichment",
			err:     &pipeline.ConfigError{Message: "credentials missing"},
			status:  http.StatusServiceUnavailable,
			message: "configuration error: credentials missing",
		},
		{
			name:    "geocoder down",
			err:     &pipeline.UpstreamError{Service: "geocoder", Cause: errors.New("timeout")},
			status:  http.StatusBadGateway,
			message: "upstream geocoder unavailable: timeout",
		},
		{
			name:    "unexpected",
			err:     errors.New("secret detail"),
			status:  http.StatusInternalServerError,
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeService{searchErr: tt.err}, nil)
			w := do(s, http.MethodPost, "/formations", `{"occupation":"agent-silo","city":"Paris"}`)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeError(t, w))
		})
	}
}

func TestPlaceEndpoint(t *testing.T) {
	svc := &fakeService{placeResp: &types.PlaceResponse{
		TrainingRecords: []types.TrainingRecord{{Title: "A", City: "Chartres", Coordinates: &types.Coordinates{Lat: 48.44, Lon: 1.49}}},
		Located:         1,
	}}
	s := newTestServer(t, svc, nil)

	w := do(s, http.MethodPost, "/formations/place", `{"training_records":[{"title":"A","city":"Chartres"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.lastPlace.TrainingRecords, 1)
	assert.Equal(t, "Chartres", svc.lastPlace.TrainingRecords[0].City)

	var resp types.PlaceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Located)
	require.NotNil(t, resp.TrainingRecords[0].Coordinates)
}

func TestOccupationsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeService{}, nil)

	w := do(s, http.MethodGet, "/occupations", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Occupations []types.OccupationInfo `json:"occupations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Occupations, 1)
	assert.Equal(t, types.OccupationAgentSilo, resp.Occupations[0].Slug)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, &fakeService{}, nil)
	w := do(s, http.MethodGet, "/runs", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t, &fakeService{}, nil)

	w := do(s, http.MethodGet, "/health", "")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSMiddleware_OPTIONS(t *testing.T) {
	svc := &fakeService{}
	s := newTestServer(t, svc, nil)

	w := do(s, http.MethodOptions, "/formations", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, svc.lastSearch.City, "preflight must not reach the handler")
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	s := newTestServer(t, &fakeService{}, nil)

	w := do(s, http.MethodGet, "/health", "")
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, id)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  100,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/formations", Method: "GET", Limit: 2, Window: time.Hour, Burst: 2},
		},
	}
	svc := &fakeService{searchResp: &types.SearchResponse{}}
	s := newTestServer(t, svc, rl)

	for i := 0; i < 2; i++ {
		w := do(s, http.MethodGet, "/formations?occupation=agent-silo&city=Paris", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := do(s, http.MethodGet, "/formations?occupation=agent-silo&city=Paris", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, decodeError(t, w), "rate limit exceeded")

	// Health stays reachable
	w = do(s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJSONResponse(t *testing.T) {
	s := newTestServer(t, &fakeService{}, nil)

	w := httptest.NewRecorder()
	s.jsonResponse(w, http.StatusCreated, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"key":"value"}`, w.Body.String())
}

func TestErrorResponse(t *testing.T) {
	s := newTestServer(t, &fakeService{}, nil)

	w := httptest.NewRecorder()
	s.errorResponse(w, http.StatusBadRequest, "test error")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"test error"}`, w.Body.String())
}
