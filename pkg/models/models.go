package models

// GeoPoint is a single GPS fix in WGS84 degrees
type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// PlanarPoint is a projected fix in meters, relative to the first fix of its sequence
type PlanarPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft GeoPoint `json:"bottom_left"`
	TopRight   GeoPoint `json:"top_right"`
}

// BoundsOf returns the smallest box enclosing points. ok is false for an empty slice.
func BoundsOf(points []GeoPoint) (box BoundingBox, ok bool) {
	if len(points) == 0 {
		return BoundingBox{}, false
	}

	box = BoundingBox{BottomLeft: points[0], TopRight: points[0]}
	for _, p := range points[1:] {
		box.BottomLeft.Lat = min(box.BottomLeft.Lat, p.Lat)
		box.BottomLeft.Lon = min(box.BottomLeft.Lon, p.Lon)
		box.TopRight.Lat = max(box.TopRight.Lat, p.Lat)
		box.TopRight.Lon = max(box.TopRight.Lon, p.Lon)
	}
	return box, true
}

// Contains reports whether p lies inside the box, edges included
func (b BoundingBox) Contains(p GeoPoint) bool {
	return p.Lat >= b.BottomLeft.Lat && p.Lat <= b.TopRight.Lat &&
		p.Lon >= b.BottomLeft.Lon && p.Lon <= b.TopRight.Lon
}
