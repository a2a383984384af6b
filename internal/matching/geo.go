package matching

import "math"

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points using the
// Haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// WithinRadius reports whether the two points are within radiusKm of each
// other. A radius of 0 or less disables the check.
func WithinRadius(lat1, lng1, lat2, lng2, radiusKm float64) bool {
	if radiusKm <= 0 {
		return true
	}
	return DistanceKm(lat1, lng1, lat2, lng2) <= radiusKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
