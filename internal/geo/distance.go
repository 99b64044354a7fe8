// Package geo provides distance computation and geocoding clients.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two WGS84 points using the
// haversine formula. The result is symmetric, zero for identical points and never negative.
// No rounding is applied here; see RoundKm.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	s1 := math.Sin(dPhi / 2)
	s2 := math.Sin(dLambda / 2)
	a := s1*s1 + math.Cos(phi1)*math.Cos(phi2)*s2*s2
	a = math.Min(1, math.Max(0, a))

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// RoundKm rounds a distance to one decimal place, the precision stored on a record.
func RoundKm(d float64) float64 {
	return math.Round(d*10) / 10
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
