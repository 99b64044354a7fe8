package geo

import (
	"context"
	"fmt"
)

// Precision is the granularity of a geocoding match, finest first.
type Precision string

// Precision tiers
const (
	PrecisionHouseNumber  Precision = "housenumber"
	PrecisionStreet       Precision = "street"
	PrecisionLocality     Precision = "locality"
	PrecisionMunicipality Precision = "municipality"
	PrecisionCity         Precision = "city"
	PrecisionUnranked     Precision = "unranked"
)

// IsAddressLevel reports whether the match pins a street or a building.
func (p Precision) IsAddressLevel() bool {
	return p == PrecisionHouseNumber || p == PrecisionStreet
}

// IsCityLevel reports whether the match only resolves to a whole town.
func (p Precision) IsCityLevel() bool {
	return p == PrecisionMunicipality || p == PrecisionCity
}

// QueryKind tells the provider how specific the expected answer is.
type QueryKind string

// Query kinds
const (
	KindAddress QueryKind = "address"
	KindPlace   QueryKind = "place"
	KindCity    QueryKind = "city"
)

// Query is one geocoding request.
type Query struct {
	Text string
	Kind QueryKind
}

// Result is a single geocoding match.
type Result struct {
	Lat        float64
	Lon        float64
	Confidence float64 // 0.0-1.0, provider score
	Precision  Precision
	Label      string
	City       string
}

// Geocoder resolves free text to coordinates. A nil Result with a nil error means no match.
type Geocoder interface {
	Geocode(ctx context.Context, q Query) (*Result, error)
}

// Error represents a failed call to a geocoding provider.
type Error struct {
	Provider string
	Query    string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("geocoding error (%s) for %q: %s: %v", e.Provider, e.Query, e.Message, e.Cause)
	}
	return fmt.Sprintf("geocoding error (%s) for %q: %s", e.Provider, e.Query, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
