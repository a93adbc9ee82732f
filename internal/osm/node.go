package osm

import "github.com/pathgrid/pathgrid/internal/geo"

// Node is a single OSM vertex: a stable id, a coordinate, and its tags.
type Node struct {
	taggable
	ID  int64
	Lat float64
	Lon float64
}

// X and Y satisfy quadtree.Point; the index is keyed lon/lat to match the
// [lon,lat] convention used throughout the GeoJSON output.
func (n *Node) X() float64 { return n.Lon }
func (n *Node) Y() float64 { return n.Lat }

// DistanceFrom returns the great-circle distance, in metres, from (lat, lon).
func (n *Node) DistanceFrom(lat, lon float64) float64 {
	return geo.Haversine(n.Lat, n.Lon, lat, lon)
}

// Distance returns the great-circle distance to another node.
func (n *Node) Distance(other *Node) float64 {
	return n.DistanceFrom(other.Lat, other.Lon)
}

// PoiTypes returns the values of every tag whose key is in the POI key set.
func (n *Node) PoiTypes() []string {
	var out []string
	for _, tag := range n.Tags {
		if _, ok := poiKeys[tag.K]; ok {
			out = append(out, tag.V)
		}
	}
	return out
}

// IsPOI reports whether this node carries any POI-category tag.
func (n *Node) IsPOI() bool {
	return len(n.PoiTypes()) > 0
}

// IsPOIType reports whether kind is among this node's POI categories.
func (n *Node) IsPOIType(kind string) bool {
	for _, k := range n.PoiTypes() {
		if k == kind {
			return true
		}
	}
	return false
}

// Name returns the "name" tag, if present.
func (n *Node) Name() (string, bool) {
	return n.GetKey("name")
}

// Address concatenates addr:housenumber, addr:street, addr:city, only when
// all three are present.
func (n *Node) Address() (string, bool) {
	num, ok1 := n.GetKey("addr:housenumber")
	street, ok2 := n.GetKey("addr:street")
	city, ok3 := n.GetKey("addr:city")
	if !ok1 || !ok2 || !ok3 {
		return "", false
	}
	return num + " " + street + ", " + city, true
}

// Wheelchair reports whether the "wheelchair" tag equals "yes".
func (n *Node) Wheelchair() bool {
	v, ok := n.GetKey("wheelchair")
	return ok && v == "yes"
}
