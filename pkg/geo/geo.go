package geo

import "math"

// earthRadiusKm is the spherical-Earth approximation used by the
// haversine formula.
const earthRadiusKm = 6371

// DistanceKm computes the great-circle distance in kilometers between two
// coordinates given in degrees, rounded to one decimal place. Inputs are
// not range-checked; out-of-range values propagate through the math
// without panicking.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(earthRadiusKm*c*10) / 10
}

func toRad(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
