// Package area estimates the planar area enclosed by a walked perimeter and
// expresses it in acres and guntha.
//
// Guntha counts are always truncated, never rounded: a plot of 101.16 m² is
// "Less than 1 Guntha" and 40.9 guntha reads as "40 Guntha".
package area

import (
	"fmt"
	"math"

	"github.com/kass/go-land-area/pkg/geo"
	"github.com/kass/go-land-area/pkg/models"
)

const (
	SquareMetersPerAcre   = 4046.86
	SquareMetersPerGuntha = 101.17
)

// Shoelace returns the unsigned area of the ring through points, closing
// the last point back to the first. Fewer than three points have no area.
// Points are taken in the given order; self-intersecting rings are not detected.
func Shoelace(points []models.PlanarPoint) float64 {
	n := len(points)
	if n < 3 {
		return 0.0
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return math.Abs(sum) / 2
}

// Result is the outcome of one surveyed session
type Result struct {
	SquareMeters float64        `json:"area_sqm"`
	Perimeter    float64        `json:"perimeter_m"`
	Class        Classification `json:"classification"`
}

// NewResult classifies sqm. Perimeter is left zero.
func NewResult(sqm float64) Result {
	return Result{
		SquareMeters: sqm,
		Class:        Classify(sqm),
	}
}

// Estimate projects fixes, applies the shoelace formula and classifies the
// area. It keeps no state and is safe for concurrent use.
func Estimate(fixes []models.GeoPoint) Result {
	r := NewResult(Shoelace(geo.Project(fixes)))
	r.Perimeter = geo.Perimeter(fixes)
	return r
}

// WholeSquareMeters truncates the area toward zero
func (r Result) WholeSquareMeters() int64 {
	return int64(r.SquareMeters)
}

// Finite reports whether the area and perimeter are real numbers. Fixes far
// outside the valid coordinate range overflow to Inf or NaN.
func (r Result) Finite() bool {
	return !math.IsInf(r.SquareMeters, 0) && !math.IsNaN(r.SquareMeters) &&
		!math.IsInf(r.Perimeter, 0) && !math.IsNaN(r.Perimeter)
}

// Label returns the unit text, e.g. "2 acres 4 Guntha"
func (r Result) Label() string {
	return r.Class.Label()
}

// Summary appends the whole square meters, e.g. "2 acres 4 Guntha (8500 sq.m)"
func (r Result) Summary() string {
	return fmt.Sprintf("%s (%d sq.m)", r.Label(), r.WholeSquareMeters())
}

// String returns the display line, e.g. "Area: 2 acres 4 Guntha (8500 sq.m)"
func (r Result) String() string {
	return "Area: " + r.Summary()
}
