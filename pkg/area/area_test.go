package area

import (
	"math"
	"testing"

	"github.com/kass/go-land-area/pkg/geo"
	"github.com/kass/go-land-area/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// squareFixes returns a square of the given side in meters with its
// south-west corner at (lat, lon), walked counter-clockwise.
func squareFixes(lat, lon, side float64) []models.GeoPoint {
	dLat := side / geo.MetersPerDegreeLat
	dLon := side / (geo.MetersPerDegreeLon * math.Cos(lat*math.Pi/180))
	return []models.GeoPoint{
		{Lat: lat, Lon: lon},
		{Lat: lat, Lon: lon + dLon},
		{Lat: lat + dLat, Lon: lon + dLon},
		{Lat: lat + dLat, Lon: lon},
	}
}

func TestShoelaceTooFewPoints(t *testing.T) {
	cases := [][]models.PlanarPoint{
		nil,
		{},
		{{X: 1, Y: 1}},
		{{X: 0, Y: 0}, {X: 100, Y: 100}},
	}

	for _, points := range cases {
		assert.Equal(t, 0.0, Shoelace(points))
	}
}

func TestShoelaceSquare(t *testing.T) {
	square := []models.PlanarPoint{
		{X: 0, Y: 0},
		{X: 300, Y: 0},
		{X: 300, Y: 300},
		{X: 0, Y: 300},
	}
	assert.Equal(t, 90000.0, Shoelace(square))
}

func TestShoelaceRotationAndReversal(t *testing.T) {
	ring := []models.PlanarPoint{
		{X: 0, Y: 0},
		{X: 40, Y: -5},
		{X: 70, Y: 30},
		{X: 35, Y: 80},
		{X: -10, Y: 45},
	}
	want := Shoelace(ring)
	require.Greater(t, want, 0.0)

	for shift := 1; shift < len(ring); shift++ {
		rotated := append(append([]models.PlanarPoint{}, ring[shift:]...), ring[:shift]...)
		assert.InDelta(t, want, Shoelace(rotated), 1e-9, "rotation by %d", shift)
	}

	reversed := make([]models.PlanarPoint, len(ring))
	for i, p := range ring {
		reversed[len(ring)-1-i] = p
	}
	assert.InDelta(t, want, Shoelace(reversed), 1e-9)
}

func TestEstimateShortSequences(t *testing.T) {
	cases := [][]models.GeoPoint{
		nil,
		{{Lat: 18.5, Lon: 73.8}},
		{{Lat: 18.5, Lon: 73.8}, {Lat: 18.6, Lon: 73.9}},
	}

	for _, fixes := range cases {
		r := Estimate(fixes)
		assert.Equal(t, 0.0, r.SquareMeters)
		assert.Equal(t, "Less than 1 Guntha", r.Label())
		assert.Equal(t, "Area: Less than 1 Guntha (0 sq.m)", r.String())
	}
}

func TestEstimateIdenticalPoints(t *testing.T) {
	fixes := []models.GeoPoint{
		{Lat: 18.5204, Lon: 73.8567},
		{Lat: 18.5204, Lon: 73.8567},
		{Lat: 18.5204, Lon: 73.8567},
		{Lat: 18.5204, Lon: 73.8567},
	}

	r := Estimate(fixes)
	assert.Equal(t, 0.0, r.SquareMeters)
	assert.Equal(t, "Less than 1 Guntha", r.Label())
	assert.Equal(t, 0.0, r.Perimeter)
}

func TestEstimateHundredMeterSquareAtEquator(t *testing.T) {
	r := Estimate(squareFixes(0, 0, 100))

	// 10000 sq.m is 2.47 acres, leaving 1906.28 sq.m of guntha
	assert.InEpsilon(t, 10000.0, r.SquareMeters, 0.005)
	assert.Equal(t, UnitAcres, r.Class.Unit)
	assert.Equal(t, int64(2), r.Class.Acres)
	assert.Equal(t, int64(18), r.Class.Guntha)
	assert.Equal(t, "2 acres 18 Guntha", r.Label())
	assert.InDelta(t, 400.0, r.Perimeter, 2.0)
}

func TestEstimateSixtyMeterSquareAtEquator(t *testing.T) {
	r := Estimate(squareFixes(0, 0, 60))

	assert.InEpsilon(t, 3600.0, r.SquareMeters, 0.005)
	assert.Equal(t, UnitGuntha, r.Class.Unit)
	assert.Equal(t, int64(0), r.Class.Acres)
	assert.Equal(t, int64(35), r.Class.Guntha)
	assert.Equal(t, "35 Guntha", r.Label())
	assert.Contains(t, r.String(), "Area: 35 Guntha (")
}

func TestEstimateThreeHundredMeterSquare(t *testing.T) {
	r := Estimate(squareFixes(0, 0, 300))

	assert.InEpsilon(t, 90000.0, r.SquareMeters, 0.005)
	assert.Equal(t, "22 acres 9 Guntha", r.Label())
}

func TestEstimateTranslationInvariance(t *testing.T) {
	base := Estimate(squareFixes(18.5204, 73.8567, 120)).SquareMeters

	shifted := squareFixes(18.5204, 73.8567, 120)
	for i := range shifted {
		shifted[i].Lat += 0.0005
		shifted[i].Lon -= 0.0007
	}

	assert.InEpsilon(t, base, Estimate(shifted).SquareMeters, 1e-4)
}

func TestEstimateRotationInvariance(t *testing.T) {
	fixes := squareFixes(18.5204, 73.8567, 80)
	want := Estimate(fixes).SquareMeters

	for shift := 1; shift < len(fixes); shift++ {
		rotated := append(append([]models.GeoPoint{}, fixes[shift:]...), fixes[:shift]...)
		assert.InEpsilon(t, want, Estimate(rotated).SquareMeters, 1e-4, "rotation by %d", shift)
	}
}

func TestResultSummary(t *testing.T) {
	r := NewResult(90000)
	assert.Equal(t, UnitAcres, r.Class.Unit)
	assert.Equal(t, int64(22), r.Class.Acres)
	assert.Equal(t, int64(9), r.Class.Guntha)
	assert.Equal(t, "22 acres 9 Guntha (90000 sq.m)", r.Summary())
	assert.Equal(t, "Area: 22 acres 9 Guntha (90000 sq.m)", r.String())
}

func TestResultTruncatesSquareMeters(t *testing.T) {
	r := NewResult(9999.99)
	assert.Equal(t, int64(9999), r.WholeSquareMeters())
	assert.Equal(t, "2 acres 18 Guntha (9999 sq.m)", r.Summary())
}
