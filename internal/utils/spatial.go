package utils

import "math"

// CalculateBoundingBox returns a box guaranteed to contain every point within
// radiusMeters of the center. It is a prefilter for indexed queries; callers
// apply the exact geodesic distance check on the candidates afterwards.
func CalculateBoundingBox(lat, lng, radiusMeters float64) (minLat, maxLat, minLng, maxLng float64) {
	latDegreePerMeter := 1.0 / 111320.0
	lngDegreePerMeter := 1.0 / (111320.0 * math.Cos(lat*math.Pi/180.0))

	deltaLat := radiusMeters * latDegreePerMeter
	deltaLng := radiusMeters * lngDegreePerMeter

	return lat - deltaLat, lat + deltaLat, lng - deltaLng, lng + deltaLng
}
