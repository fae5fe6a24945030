package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle math.
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the approximate north-south span of one degree of latitude.
const kmPerDegreeLat = 111.0

// Bounds is an axis-aligned latitude/longitude rectangle. It is used as a
// coarse pre-filter before exact distance computation, so it is always a
// superset of the circle it approximates.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// BoundsAround returns the bounding box covering a circle of radiusKm around
// the given center. The longitude delta is widened by cos(latitude) to account
// for meridian convergence away from the equator.
func BoundsAround(lat, lng, radiusKm float64) Bounds {
	latDelta := radiusKm / kmPerDegreeLat

	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01 // near the poles a degree of longitude spans ~0 km
	}
	lngDelta := radiusKm / (kmPerDegreeLat * cosLat)

	return Bounds{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLng: lng - lngDelta,
		MaxLng: lng + lngDelta,
	}
}

// Contains reports whether the point lies inside the bounds.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// HaversineKm returns the great-circle distance in kilometres between two
// WGS 84 coordinates.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const degToRad = math.Pi / 180

	phi1 := lat1 * degToRad
	phi2 := lat2 * degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lng2 - lng1) * degToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}
