// Package geojson renders the engine's walk results and POI lookups as
// GeoJSON-compliant shapes, coordinates always ordered [lon, lat].
package geojson

// Point is a raw coordinate pair.
type Point struct {
	Lon float64
	Lat float64
}

func (p Point) pair() [2]float64 { return [2]float64{p.Lon, p.Lat} }

// GeomPoint is a GeoJSON "Point" geometry.
type GeomPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// NewPoint wraps a coordinate as a Point geometry.
func NewPoint(p Point) GeomPoint {
	return GeomPoint{Type: "Point", Coordinates: p.pair()}
}

// MultiPoint is a GeoJSON "MultiPoint" geometry.
type MultiPoint struct {
	Type        string       `json:"type"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// NewMultiPoint wraps a set of coordinates as a MultiPoint geometry.
func NewMultiPoint(pts []Point) MultiPoint {
	coords := make([][2]float64, len(pts))
	for i, p := range pts {
		coords[i] = p.pair()
	}
	return MultiPoint{Type: "MultiPoint", Coordinates: coords}
}

// Segment is one rendered edge: a pair of endpoints.
type Segment struct {
	From Point
	To   Point
}

// MultiLineString is a GeoJSON "MultiLineString" geometry where each member
// line is exactly one rendered edge (two points), matching how this engine
// renders walked steps.
type MultiLineString struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

// NewMultiLineString renders a set of edges as a MultiLineString.
func NewMultiLineString(segments []Segment) MultiLineString {
	coords := make([][][2]float64, len(segments))
	for i, s := range segments {
		coords[i] = [][2]float64{s.From.pair(), s.To.pair()}
	}
	return MultiLineString{Type: "MultiLineString", Coordinates: coords}
}

// Properties carries the free-form metadata attached to a Feature.
type Properties struct {
	Name   string `json:"name,omitempty"`
	NodeID *int64 `json:"node_id,omitempty"`
}

// Feature wraps any geometry with properties, GeoJSON "Feature" style.
type Feature struct {
	Type       string      `json:"type"`
	Properties Properties  `json:"properties"`
	Geometry   interface{} `json:"geometry"`
}

// NewFeature builds a Feature wrapping geometry.
func NewFeature(props Properties, geometry interface{}) Feature {
	return Feature{Type: "Feature", Properties: props, Geometry: geometry}
}

// FeatureCollection is a GeoJSON "FeatureCollection".
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// NewFeatureCollection wraps a set of features.
func NewFeatureCollection(features []Feature) FeatureCollection {
	if features == nil {
		features = []Feature{}
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
