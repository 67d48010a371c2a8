package geo

import "math"

// Mean earth radius in meters, spherical approximation.
const earthRadiusM = 6371000.0

// DistanceM returns the great-circle distance in meters between two
// coordinates using the haversine formula.
func DistanceM(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dPhi := toRad(lat2 - lat1)
	dLambda := toRad(lng2 - lng1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	return DistanceM(lat1, lng1, lat2, lng2) / 1000
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
