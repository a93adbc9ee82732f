package osm

import "strings"

// Tag is a single OSM key/value pair.
type Tag struct {
	K string
	V string
}

// poiKeys is the set of tag keys that make a node a point of interest.
var poiKeys = map[string]struct{}{
	"amenity":     {},
	"shop":        {},
	"leisure":     {},
	"sport":       {},
	"tourism":     {},
	"information": {},
	"natural":     {},
}

// taggable is embedded by Node and Way to share key lookup.
type taggable struct {
	Tags []Tag
}

// HasKey reports whether any tag carries key k.
func (t taggable) HasKey(k string) bool {
	_, ok := t.GetKey(k)
	return ok
}

// GetKey returns the value of the first tag carrying key k.
func (t taggable) GetKey(k string) (string, bool) {
	for _, tag := range t.Tags {
		if tag.K == k {
			return tag.V, true
		}
	}
	return "", false
}

func foldCase(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
