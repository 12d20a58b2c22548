package spatial

import (
	"math"

	"github.com/golang/geo/s2"
)

// Earth radius constants (mean radius).
const (
	EarthRadiusKm     = 6371.0
	EarthRadiusMeters = 6371000.0
)

// HaversineKm calculates the great-circle distance between two points in
// kilometers using the Haversine formula:
//
//	a = sin²(Δlat/2) + cos(lat1)·cos(lat2)·sin²(Δlon/2)
//	c = 2·asin(√a)
//	d = R·c
//
// Inputs are decimal degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return EarthRadiusKm * c
}

// ValidLatLng reports whether the pair is a representable geographic
// coordinate: latitude in [-90, 90] and longitude in [-180, 180].
func ValidLatLng(lat, lon float64) bool {
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}
