package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBANURL is the public endpoint of the French national address base (BAN).
const DefaultBANURL = "https://api-adresse.data.gouv.fr"

// BANGeocoder queries the api-adresse.data.gouv.fr search endpoint.
type BANGeocoder struct {
	baseURL string
	client  *http.Client
}

// NewBANGeocoder creates a BAN client. An empty baseURL uses DefaultBANURL; every call
// is bounded by timeout.
func NewBANGeocoder(baseURL string, timeout time.Duration) *BANGeocoder {
	if baseURL == "" {
		baseURL = DefaultBANURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &BANGeocoder{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// banResponse is the subset of the GeoJSON FeatureCollection we read.
type banResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat]
		} `json:"geometry"`
		Properties struct {
			Label string  `json:"label"`
			Score float64 `json:"score"`
			Type  string  `json:"type"`
			City  string  `json:"city"`
			Name  string  `json:"name"`
		} `json:"properties"`
	} `json:"features"`
}

// Geocode returns the best BAN match for q, or nil when nothing matched.
func (g *BANGeocoder) Geocode(ctx context.Context, q Query) (*Result, error) {
	text := strings.TrimSpace(q.Text)
	if len(text) < 3 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("limit", "1")
	if q.Kind == KindCity {
		params.Set("type", "municipality")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search/?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Provider: "ban", Query: text, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: "ban", Query: text, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Provider: "ban", Query: text, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	var body banResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{Provider: "ban", Query: text, Message: "failed to decode response", Cause: err}
	}

	if len(body.Features) == 0 || len(body.Features[0].Geometry.Coordinates) < 2 {
		return nil, nil
	}

	f := body.Features[0]
	city := f.Properties.City
	if city == "" && f.Properties.Type == "municipality" {
		city = f.Properties.Name
	}

	return &Result{
		Lat:        f.Geometry.Coordinates[1],
		Lon:        f.Geometry.Coordinates[0],
		Confidence: f.Properties.Score,
		Precision:  banPrecision(f.Properties.Type),
		Label:      f.Properties.Label,
		City:       city,
	}, nil
}

func banPrecision(t string) Precision {
	switch t {
	case "housenumber":
		return PrecisionHouseNumber
	case "street":
		return PrecisionStreet
	case "locality":
		return PrecisionLocality
	case "municipality":
		return PrecisionMunicipality
	default:
		return PrecisionUnranked
	}
}
