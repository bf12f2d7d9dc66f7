// Package track reads recorded fix sequences from YAML, JSON or GeoJSON
// documents and writes surveyed plots back out as GeoJSON.
package track

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"

	"github.com/kass/go-land-area/pkg/area"
	"github.com/kass/go-land-area/pkg/models"
)

var (
	ErrEmptyDocument       = errors.New("empty track document")
	ErrMultiRing           = errors.New("multi-ring polygons are not supported")
	ErrUnsupportedGeometry = errors.New("unsupported geometry")
)

// fixList is the plain fix-list layout
//
//	fixes:
//	  - lat: 18.5204
//	    lon: 73.8567
type fixList struct {
	Fixes []models.GeoPoint `yaml:"fixes"`
}

// Load reads a track from path; "-" reads stdin
func Load(path string) ([]models.GeoPoint, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read track: %w", err)
	}

	fixes, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return fixes, nil
}

// Decode parses a fix list or a GeoJSON document, in JSON or YAML
func Decode(data []byte) ([]models.GeoPoint, error) {
	if json.Valid(data) {
		return decodeJSON(data)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyDocument
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var fixes []models.GeoPoint
		if err := root.Decode(&fixes); err != nil {
			return nil, fmt.Errorf("failed to decode fixes: %w", err)
		}
		return fixes, nil

	case yaml.MappingNode:
		if hasKey(root, "type") {
			// orb only reads JSON, so YAML-flavoured GeoJSON is re-encoded
			var v interface{}
			if err := root.Decode(&v); err != nil {
				return nil, fmt.Errorf("failed to parse geojson: %w", err)
			}
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to convert geojson: %w", err)
			}
			return decodeGeoJSON(raw)
		}
		var list fixList
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("failed to decode fixes: %w", err)
		}
		return list.Fixes, nil

	default:
		return nil, fmt.Errorf("unexpected top-level %s", nodeKind(root.Kind))
	}
}

func decodeJSON(data []byte) ([]models.GeoPoint, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}

	switch trimmed[0] {
	case '[':
		var fixes []models.GeoPoint
		if err := json.Unmarshal(trimmed, &fixes); err != nil {
			return nil, fmt.Errorf("failed to decode fixes: %w", err)
		}
		return fixes, nil

	case '{':
		var probe struct {
			Type  *string           `json:"type"`
			Fixes []models.GeoPoint `json:"fixes"`
		}
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		if probe.Type != nil {
			return decodeGeoJSON(trimmed)
		}
		return probe.Fixes, nil

	default:
		return nil, fmt.Errorf("unexpected top-level JSON value %q", trimmed[0])
	}
}

func decodeGeoJSON(data []byte) ([]models.GeoPoint, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to parse geojson: %w", err)
	}

	switch header.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feature collection: %w", err)
		}
		return fromFeatures(fc.Features)

	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse feature: %w", err)
		}
		return fromGeometry(f.Geometry)

	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse geometry: %w", err)
		}
		return fromGeometry(g.Geometry())
	}
}

// fromFeatures accepts either a single non-point feature or an ordered run of points
func fromFeatures(features []*geojson.Feature) ([]models.GeoPoint, error) {
	if len(features) == 1 {
		if _, ok := features[0].Geometry.(orb.Point); !ok {
			return fromGeometry(features[0].Geometry)
		}
	}

	fixes := make([]models.GeoPoint, 0, len(features))
	for i, f := range features {
		p, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("%w: feature %d is %s, expected Point", ErrUnsupportedGeometry, i, geometryType(f.Geometry))
		}
		fixes = append(fixes, fromPoint(p))
	}
	return fixes, nil
}

func fromGeometry(g orb.Geometry) ([]models.GeoPoint, error) {
	switch g := g.(type) {
	case orb.Point:
		return []models.GeoPoint{fromPoint(g)}, nil
	case orb.MultiPoint:
		return fromPoints(g), nil
	case orb.LineString:
		return fromPoints(g), nil
	case orb.Ring:
		return fromRing(g), nil
	case orb.Polygon:
		if len(g) == 0 {
			return []models.GeoPoint{}, nil
		}
		if len(g) > 1 {
			return nil, ErrMultiRing
		}
		return fromRing(g[0]), nil
	case orb.MultiPolygon:
		return nil, ErrMultiRing
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, geometryType(g))
	}
}

// fromRing drops the closing vertex the GeoJSON format repeats
func fromRing(r orb.Ring) []models.GeoPoint {
	points := []orb.Point(r)
	if len(points) > 1 && points[0] == points[len(points)-1] {
		points = points[:len(points)-1]
	}
	return fromPoints(points)
}

func fromPoints(points []orb.Point) []models.GeoPoint {
	fixes := make([]models.GeoPoint, len(points))
	for i, p := range points {
		fixes[i] = fromPoint(p)
	}
	return fixes
}

func fromPoint(p orb.Point) models.GeoPoint {
	return models.GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
}

// EncodeFeature writes the walked plot as a closed GeoJSON polygon with its
// area figures as properties
func EncodeFeature(fixes []models.GeoPoint, result area.Result) ([]byte, error) {
	ring := make(orb.Ring, 0, len(fixes)+1)
	for _, fix := range fixes {
		ring = append(ring, orb.Point{fix.Lon, fix.Lat})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}

	f := geojson.NewFeature(orb.Polygon{ring})
	f.Properties["area_sqm"] = result.SquareMeters
	f.Properties["perimeter_m"] = result.Perimeter
	f.Properties["unit"] = result.Class.Unit.String()
	f.Properties["acres"] = result.Class.Acres
	f.Properties["guntha"] = result.Class.Guntha
	f.Properties["label"] = result.Summary()

	data, err := f.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode feature: %w", err)
	}
	return data, nil
}

func hasKey(node *yaml.Node, key string) bool {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "null"
	}
	return g.GeoJSONType()
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return fmt.Sprintf("node kind %d", k)
	}
}
