package osm

// StitchWayID is the reserved way id for synthetic stitch edges connecting
// named/POI nodes to the walkable network. It carries no intrinsic
// geometry.
const StitchWayID int64 = 1

// Way is an ordered polyline of node ids with tags.
type Way struct {
	taggable
	ID    int64
	Nodes []int64
}

// Usable reports whether the way has enough nodes to contribute an edge.
func (w *Way) Usable() bool {
	return len(w.Nodes) >= 2
}

// Name returns the "name" tag, if present.
func (w *Way) Name() (string, bool) {
	return w.GetKey("name")
}

// IsHighway reports whether this way should contribute to the walking
// graph: either it carries a "highway" tag, or it is the synthetic
// stitch way.
func (w *Way) IsHighway() bool {
	return w.HasKey("highway") || w.ID == StitchWayID
}

// IsCycleway reports whether this way is tagged as a cycleway.
func (w *Way) IsCycleway() bool {
	return w.HasKey("cycleway")
}

// onewayValues holds the tri-state meaning of the "oneway" tag.
var onewayValues = map[string]bool{
	"yes": true,
	"1":   true,
	"no":  false,
	"0":   false,
}

// IsOneway reports whether this way is one-way. An absent tag is not
// one-way. An unrecognised value (e.g. "maybe") is treated as its
// permissive default — not one-way — per the error-handling design for
// unknown categorical tag values; oneWayUnknown reports whether the stored
// value was unrecognised, so the loader can log a warning once at build
// time.
func (w *Way) IsOneway() (oneway bool, oneWayUnknown bool) {
	v, ok := w.GetKey("oneway")
	if !ok {
		return false, false
	}
	if b, known := onewayValues[v]; known {
		return b, false
	}
	return false, true
}
