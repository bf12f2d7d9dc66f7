package geo

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/kass/go-land-area/pkg/models"
)

func TestProjectEmpty(t *testing.T) {
	planar := Project(nil)
	if planar == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(planar) != 0 {
		t.Errorf("Expected 0 points, got %d", len(planar))
	}
}

func TestProjectOriginIsZero(t *testing.T) {
	points := []models.GeoPoint{
		{Lat: 18.5204, Lon: 73.8567}, // Pune
		{Lat: 18.5210, Lon: 73.8575},
	}

	planar := Project(points)
	if planar[0] != (models.PlanarPoint{}) {
		t.Errorf("Expected origin at (0, 0), got %+v", planar[0])
	}
	if len(planar) != len(points) {
		t.Errorf("Expected %d points, got %d", len(points), len(planar))
	}
}

func TestProjectUsesPerPointLatitude(t *testing.T) {
	points := []models.GeoPoint{
		{Lat: 10.0, Lon: 20.0},
		{Lat: 11.0, Lon: 21.0},
		{Lat: 9.5, Lon: 19.0},
	}

	want := []models.PlanarPoint{
		{X: 0, Y: 0},
		{X: MetersPerDegreeLon * math.Cos(11.0*math.Pi/180), Y: MetersPerDegreeLat},
		{X: -MetersPerDegreeLon * math.Cos(9.5*math.Pi/180), Y: -0.5 * MetersPerDegreeLat},
	}

	got := Project(points)
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("Project() mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectDegeneratePoints(t *testing.T) {
	points := []models.GeoPoint{
		{Lat: 45.0, Lon: 7.0},
		{Lat: 45.0, Lon: 7.0},
		{Lat: 45.0, Lon: 7.0},
	}

	for i, p := range Project(points) {
		if p.X != 0 || p.Y != 0 {
			t.Errorf("Point %d: expected (0, 0), got %+v", i, p)
		}
	}
}

func TestProjectDoesNotMutateInput(t *testing.T) {
	points := []models.GeoPoint{
		{Lat: 1, Lon: 2},
		{Lat: 3, Lon: 4},
	}
	before := append([]models.GeoPoint(nil), points...)

	Project(points)
	if diff := cmp.Diff(before, points); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestDistance(t *testing.T) {
	// One degree of latitude along a meridian
	d := Distance(models.GeoPoint{Lat: 0, Lon: 0}, models.GeoPoint{Lat: 1, Lon: 0})
	if math.Abs(d-111195) > 1 {
		t.Errorf("Expected ~111195m, got %f", d)
	}

	if got := Distance(models.GeoPoint{Lat: 40, Lon: -74}, models.GeoPoint{Lat: 40, Lon: -74}); got != 0 {
		t.Errorf("Expected 0 for identical points, got %f", got)
	}
}

func TestPerimeter(t *testing.T) {
	if got := Perimeter([]models.GeoPoint{{Lat: 1, Lon: 1}}); got != 0 {
		t.Errorf("Expected 0 for a single fix, got %f", got)
	}

	side := 100.0
	dLat := side / MetersPerDegreeLat
	dLon := side / MetersPerDegreeLon
	square := []models.GeoPoint{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: dLon},
		{Lat: dLat, Lon: dLon},
		{Lat: dLat, Lon: 0},
	}

	// Haversine uses a spherical earth, so allow a little drift
	got := Perimeter(square)
	if math.Abs(got-4*side) > 2 {
		t.Errorf("Expected perimeter ~%f, got %f", 4*side, got)
	}
}

func BenchmarkProject(b *testing.B) {
	points := make([]models.GeoPoint, 10000)
	for i := range points {
		angle := 2 * math.Pi * float64(i) / float64(len(points))
		points[i] = models.GeoPoint{
			Lat: 18.52 + 0.001*math.Sin(angle),
			Lon: 73.85 + 0.001*math.Cos(angle),
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Project(points)
	}
}
