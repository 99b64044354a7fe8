package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonathan/formation-finder/internal/types"
)

// DefaultNominatimURL is the public OpenStreetMap Nominatim endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// DefaultLocatorInterval is the minimum delay between two calls, per the provider's usage policy.
const DefaultLocatorInterval = time.Second

// DefaultLocatorUserAgent identifies the application, as required by Nominatim.
const DefaultLocatorUserAgent = "FormationFinder/1.0 (agricultural training search)"

// CityLocator resolves a city name to coordinates for map placement.
// A nil result with a nil error means the city is unknown.
type CityLocator interface {
	Locate(ctx context.Context, city string) (*types.Coordinates, error)
}

// NominatimLocator is a CityLocator backed by Nominatim. Calls are serialized through a
// limiter so two requests are never closer than the configured interval.
type NominatimLocator struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewNominatimLocator creates a locator. Zero values fall back to the package defaults.
func NewNominatimLocator(baseURL string, interval, timeout time.Duration) *NominatimLocator {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if interval <= 0 {
		interval = DefaultLocatorInterval
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &NominatimLocator{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		userAgent: DefaultLocatorUserAgent,
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Locate looks a French city up by name.
func (l *NominatimLocator) Locate(ctx context.Context, city string) (*types.Coordinates, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, nil
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, &Error{Provider: "nominatim", Query: city, Message: "rate limiter wait aborted", Cause: err}
	}

	params := url.Values{}
	params.Set("city", city)
	params.Set("country", "France")
	params.Set("format", "jsonv2")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &Error{Provider: "nominatim", Query: city, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: "nominatim", Query: city, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Provider: "nominatim", Query: city, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, &Error{Provider: "nominatim", Query: city, Message: "failed to decode response", Cause: err}
	}
	if len(places) == 0 {
		return nil, nil
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return nil, &Error{Provider: "nominatim", Query: city, Message: "invalid coordinates in response"}
	}

	return &types.Coordinates{Lat: lat, Lon: lon}, nil
}
