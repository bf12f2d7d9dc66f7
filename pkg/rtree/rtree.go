// Package rtree keeps surveyed plots in an in-memory R-Tree so they can be
// looked up by area on the map or by distance from a fix.
package rtree

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dhconnelly/rtreego"

	"github.com/kass/go-land-area/pkg/area"
	"github.com/kass/go-land-area/pkg/geo"
	"github.com/kass/go-land-area/pkg/models"
)

const (
	tolerance   = 1e-7 // degrees, roughly 1cm
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

var (
	ErrNoFixes       = errors.New("plot has no fixes")
	ErrDuplicatePlot = errors.New("plot already indexed")
)

// Plot is one surveyed piece of land
type Plot struct {
	ID         string             `json:"id"`
	Fixes      []models.GeoPoint  `json:"fixes"`
	Result     area.Result        `json:"result"`
	Bounds     models.BoundingBox `json:"bounds"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// NewPlot builds a plot from a finished walk
func NewPlot(id string, fixes []models.GeoPoint, result area.Result) (*Plot, error) {
	bounds, ok := models.BoundsOf(fixes)
	if !ok {
		return nil, ErrNoFixes
	}
	return &Plot{
		ID:         id,
		Fixes:      append([]models.GeoPoint(nil), fixes...),
		Result:     result,
		Bounds:     bounds,
		RecordedAt: time.Now(),
	}, nil
}

// Center returns the middle of the plot's bounding box
func (p *Plot) Center() models.GeoPoint {
	return models.GeoPoint{
		Lat: (p.Bounds.BottomLeft.Lat + p.Bounds.TopRight.Lat) / 2,
		Lon: (p.Bounds.BottomLeft.Lon + p.Bounds.TopRight.Lon) / 2,
	}
}

// spatialPlot wraps a plot to implement rtreego.Spatial
type spatialPlot struct {
	plot *Plot
	rect *rtreego.Rect
}

func (sp *spatialPlot) Bounds() *rtreego.Rect {
	return sp.rect
}

// PlotIndex is a thread-safe R-Tree of plots
type PlotIndex struct {
	tree      *rtreego.Rtree
	byID      map[string]*spatialPlot
	mu        sync.RWMutex
	itemCount atomic.Int64
}

// NewPlotIndex creates an empty index
func NewPlotIndex() *PlotIndex {
	return &PlotIndex{
		tree: rtreego.NewTree(dimensions, minChildren, maxChildren),
		byID: make(map[string]*spatialPlot),
	}
}

// Insert adds a plot. IDs must be unique.
func (idx *PlotIndex) Insert(plot *Plot) error {
	if plot == nil || len(plot.Fixes) == 0 {
		return ErrNoFixes
	}

	rect, err := boxToRect(plot.Bounds)
	if err != nil {
		return fmt.Errorf("failed to index plot %s: %w", plot.ID, err)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.byID[plot.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePlot, plot.ID)
	}

	item := &spatialPlot{plot: plot, rect: rect}
	idx.tree.Insert(item)
	idx.byID[plot.ID] = item
	idx.itemCount.Add(1)
	return nil
}

// Get returns the plot with the given id
func (idx *PlotIndex) Get(id string) (*Plot, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	item, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return item.plot, true
}

// QueryBox returns all plots whose bounds intersect the box
func (idx *PlotIndex) QueryBox(box models.BoundingBox) ([]*Plot, error) {
	if box.TopRight.Lat < box.BottomLeft.Lat || box.TopRight.Lon < box.BottomLeft.Lon {
		return nil, fmt.Errorf("invalid bounding box: top right %+v is below bottom left %+v", box.TopRight, box.BottomLeft)
	}

	bounds, err := boxToRect(box)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := idx.tree.SearchIntersect(bounds)

	plots := make([]*Plot, 0, len(results))
	for _, result := range results {
		item, ok := result.(*spatialPlot)
		if !ok || item.plot == nil {
			continue
		}
		plots = append(plots, item.plot)
	}

	sort.Slice(plots, func(i, j int) bool { return plots[i].ID < plots[j].ID })
	return plots, nil
}

// Nearest returns up to n plots ordered by distance from (lat, lon) to their center
func (idx *PlotIndex) Nearest(lat, lon float64, n int) []*Plot {
	if n <= 0 {
		return []*Plot{}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	// The tree ranks by degree-space distance to the bounds, so over-fetch
	// and re-rank by ground distance
	query := models.GeoPoint{Lat: lat, Lon: lon}
	candidates := idx.tree.NearestNeighbors(n*2, rtreego.Point{lat, lon})

	type ranked struct {
		plot     *Plot
		distance float64
	}
	rankedPlots := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		item, ok := c.(*spatialPlot)
		if !ok || item == nil {
			continue
		}
		rankedPlots = append(rankedPlots, ranked{
			plot:     item.plot,
			distance: geo.Distance(query, item.plot.Center()),
		})
	}

	sort.SliceStable(rankedPlots, func(i, j int) bool {
		return rankedPlots[i].distance < rankedPlots[j].distance
	})

	if len(rankedPlots) > n {
		rankedPlots = rankedPlots[:n]
	}
	plots := make([]*Plot, len(rankedPlots))
	for i, r := range rankedPlots {
		plots[i] = r.plot
	}
	return plots
}

// Count returns the number of indexed plots
func (idx *PlotIndex) Count() int64 {
	return idx.itemCount.Load()
}

// Clear removes all plots from the index
func (idx *PlotIndex) Clear() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.tree = rtreego.NewTree(dimensions, minChildren, maxChildren)
	idx.byID = make(map[string]*spatialPlot)
	idx.itemCount.Store(0)
}

// boxToRect converts a box to tree bounds, padding zero-width sides
func boxToRect(box models.BoundingBox) (*rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{box.BottomLeft.Lat, box.BottomLeft.Lon},
		[]float64{
			max(box.TopRight.Lat-box.BottomLeft.Lat, tolerance),
			max(box.TopRight.Lon-box.BottomLeft.Lon, tolerance),
		},
	)
}
