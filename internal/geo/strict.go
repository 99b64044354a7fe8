package geo

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Thresholds are the minimum confidence accepted per attempt tier.
type Thresholds struct {
	Address float64
	Place   float64
	City    float64
}

// DefaultThresholds returns the confidence floors used for enrichment placement.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Address: 0.6,
		Place:   0.5,
		City:    0.4,
	}
}

// StrictResolver places an unverified candidate by trying, in order, its full address,
// its organization name with the city, then the city alone. The first attempt whose
// confidence reaches its tier floor wins. An address attempt that comes back at
// municipality or city granularity rejects the candidate outright: it is not allowed to
// fall through to the coarser tiers.
type StrictResolver struct {
	geocoder   Geocoder
	thresholds Thresholds
	logger     *zap.Logger
}

// NewStrictResolver creates a resolver over geocoder.
func NewStrictResolver(geocoder Geocoder, thresholds Thresholds, logger *zap.Logger) *StrictResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrictResolver{
		geocoder:   geocoder,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Resolve returns the accepted match, or nil when the candidate cannot be placed.
// Provider failures count as no match for the tier and never abort the caller.
func (r *StrictResolver) Resolve(ctx context.Context, address, organization, city string) *Result {
	address = strings.TrimSpace(address)
	organization = strings.TrimSpace(organization)
	city = strings.TrimSpace(city)

	if address != "" {
		res := r.attempt(ctx, Query{Text: joinNonEmpty(address, city), Kind: KindAddress})
		if res != nil {
			if res.Precision.IsCityLevel() {
				r.logger.Debug("address resolved only to city level, rejecting",
					zap.String("address", address), zap.String("precision", string(res.Precision)))
				return nil
			}
			if res.Precision.IsAddressLevel() && res.Confidence >= r.thresholds.Address {
				return res
			}
		}
	}

	if organization != "" && city != "" {
		res := r.attempt(ctx, Query{Text: joinNonEmpty(organization, city), Kind: KindPlace})
		if res != nil && res.Confidence >= r.thresholds.Place {
			return res
		}
	}

	if city != "" {
		res := r.attempt(ctx, Query{Text: city, Kind: KindCity})
		if res != nil && res.Confidence >= r.thresholds.City {
			return res
		}
	}

	return nil
}

func (r *StrictResolver) attempt(ctx context.Context, q Query) *Result {
	res, err := r.geocoder.Geocode(ctx, q)
	if err != nil {
		r.logger.Debug("geocoding attempt failed", zap.String("kind", string(q.Kind)), zap.String("query", q.Text), zap.Error(err))
		return nil
	}
	return res
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
