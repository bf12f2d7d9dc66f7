// Package geo converts GPS fixes into local planar coordinates and
// measures great-circle distances between them.
package geo

import (
	"math"

	"github.com/kass/go-land-area/pkg/models"
)

const (
	// MetersPerDegreeLat is the length of one degree of latitude
	MetersPerDegreeLat = 111132.92
	// MetersPerDegreeLon is the length of one degree of longitude at the equator
	MetersPerDegreeLon = 111319.49
)

// Project maps every fix onto a tangent plane anchored at points[0].
//
// The longitude scale is corrected with the cosine of each fix's own
// latitude, not the origin's. Area figures depend on this, so keep it.
// The result has the same length and order as points; an empty input
// yields an empty, non-nil slice.
func Project(points []models.GeoPoint) []models.PlanarPoint {
	planar := make([]models.PlanarPoint, len(points))
	if len(points) == 0 {
		return planar
	}

	origin := points[0]
	for i, p := range points {
		planar[i] = models.PlanarPoint{
			X: (p.Lon - origin.Lon) * MetersPerDegreeLon * math.Cos(toRadians(p.Lat)),
			Y: (p.Lat - origin.Lat) * MetersPerDegreeLat,
		}
	}
	return planar
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
