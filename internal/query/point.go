// Package query is the query pipeline (C7): it turns a multi-constraint
// request into a conjunction/disjunction of walker runs and combines the
// resulting walk results via the set algebra in package graph.
package query

import (
	"errors"

	"github.com/pathgrid/pathgrid/internal/osm"
)

// initialSeedRadiusMeters bounds how far a raw (lon, lat) point may be from
// a walkable node to still seed a walk.
const initialSeedRadiusMeters = 150

// ErrNodeNotFound is returned when a Point names a node id the store
// doesn't have.
var ErrNodeNotFound = errors.New("query: node not found")

// ErrNoSeedNearby is returned when a raw coordinate has no walkable node
// within the seed radius.
var ErrNoSeedNearby = errors.New("query: no walkable node near point")

// Point is either a raw coordinate or a reference to a known node id.
type Point struct {
	Lon    float64
	Lat    float64
	NodeID *int64
}

// Resolve turns a Point into a concrete, walkable node id.
func (p Point) Resolve(store *osm.Db) (int64, error) {
	if p.NodeID != nil {
		if _, ok := store.NodeByID(*p.NodeID); ok {
			return *p.NodeID, nil
		}
		return 0, ErrNodeNotFound
	}
	id, ok := store.InitialNode(p.Lat, p.Lon, initialSeedRadiusMeters)
	if !ok {
		return 0, ErrNoSeedNearby
	}
	return id, nil
}
