package geo

import (
	"math"

	"github.com/kass/go-land-area/pkg/models"
)

const earthRadius = 6371000.0 // meters

// Distance calculates the haversine distance between two fixes in meters
func Distance(a, b models.GeoPoint) float64 {
	lat1Rad := toRadians(a.Lat)
	lat2Rad := toRadians(b.Lat)

	dLat := lat2Rad - lat1Rad
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadius * c
}

// Perimeter returns the length of the closed ring through points in meters.
// The last fix is joined back to the first.
func Perimeter(points []models.GeoPoint) float64 {
	if len(points) < 2 {
		return 0
	}

	total := 0.0
	for i := range points {
		total += Distance(points[i], points[(i+1)%len(points)])
	}
	return total
}
