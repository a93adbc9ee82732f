// Package osm is the OSM data store (C3): typed nodes/ways/tags, the
// highway adjacency map, and the POI/name/address sub-indices, fused from
// an upstream PBF decoder (github.com/paulmach/osm) and stitched so that
// off-network POIs remain walkable.
package osm

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/pathgrid/pathgrid/internal/transit"
)

// stitchThresholdMeters is the maximum distance at which a named/POI node
// is connected to the walkable network by a synthetic edge.
const stitchThresholdMeters = 35.0

// Db is the fused OSM store the graph walkers run over.
type Db struct {
	Nodes      map[int64]*Node
	Ways       map[int64]*Way
	Adjacency  AdjacencyMap
	Index      *NodeIndex
	NodeToStop map[int64]string
	StopToNode map[string]int64

	minLat, minLon, maxLat, maxLon float64
}

// NewDb creates an empty store, ready for LoadPBF then Build.
func NewDb() *Db {
	return &Db{
		Nodes:      make(map[int64]*Node),
		Ways:       make(map[int64]*Way),
		Adjacency:  make(AdjacencyMap),
		NodeToStop: make(map[int64]string),
		StopToNode: make(map[string]int64),
		minLat:     90, minLon: 180, maxLat: -90, maxLon: -180,
	}
}

// LoadPBF streams node/way records from an OSM PBF file. Only raw decoding
// is delegated to the library: every typed record it yields is converted
// into this package's own Node/Way immediately.
func (d *Db) LoadPBF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("osm: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 4)
	defer scanner.Close()

	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			n := &Node{ID: int64(o.ID), Lat: o.Lat, Lon: o.Lon}
			for _, t := range o.Tags {
				n.Tags = append(n.Tags, Tag{K: t.Key, V: t.Value})
			}
			d.Nodes[n.ID] = n
			d.trackBounds(n.Lat, n.Lon)
		case *osm.Way:
			w := &Way{ID: int64(o.ID)}
			for _, wn := range o.Nodes {
				w.Nodes = append(w.Nodes, int64(wn.ID))
			}
			for _, t := range o.Tags {
				w.Tags = append(w.Tags, Tag{K: t.Key, V: t.Value})
			}
			d.Ways[w.ID] = w
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("osm: scan %s: %w", path, err)
	}
	return nil
}

func (d *Db) trackBounds(lat, lon float64) {
	if lat < d.minLat {
		d.minLat = lat
	}
	if lat > d.maxLat {
		d.maxLat = lat
	}
	if lon < d.minLon {
		d.minLon = lon
	}
	if lon > d.maxLon {
		d.maxLon = lon
	}
}

// Build performs the one-shot, sequential construction pipeline described
// in the data model: stitch way, highway adjacency, spatial index, and
// POI/name stitching. It must be called exactly once, after LoadPBF, before
// the store is shared with concurrent query workers.
func (d *Db) Build() {
	d.Ways[StitchWayID] = &Way{ID: StitchWayID}

	for _, w := range d.Ways {
		if !w.IsHighway() || !w.Usable() {
			if w.IsHighway() && !w.Usable() {
				log.Printf("osm: skipping single-node highway way %d", w.ID)
			}
			continue
		}
		if _, unknown := w.IsOneway(); unknown {
			log.Printf("osm: way %d has unrecognised oneway value, defaulting to not-oneway", w.ID)
		}
		for i := 0; i+1 < len(w.Nodes); i++ {
			a, b := w.Nodes[i], w.Nodes[i+1]
			na, oka := d.Nodes[a]
			nb, okb := d.Nodes[b]
			if !oka || !okb {
				log.Printf("osm: way %d references unknown node, skipping segment", w.ID)
				continue
			}
			d.Adjacency.Connect(a, b, w.ID, na.Distance(nb))
		}
	}

	d.Index = NewNodeIndex(d.minLon, d.minLat, d.maxLon, d.maxLat)
	for _, n := range d.Nodes {
		d.Index.Insert(n)
	}

	for _, n := range d.Nodes {
		if !n.IsPOI() {
			if _, ok := n.Name(); !ok {
				continue
			}
		}
		d.stitch(n)
	}
}

// stitch connects a named/POI node to the nearest already-adjacent node
// within 35 m via the synthetic stitch way, if one isn't already present.
func (d *Db) stitch(n *Node) {
	if d.Adjacency.Has(n.ID) {
		return
	}
	for _, candidateID := range d.Index.Around(n.Lat, n.Lon) {
		if candidateID == n.ID || !d.Adjacency.Has(candidateID) {
			continue
		}
		candidate := d.Nodes[candidateID]
		if candidate == nil {
			continue
		}
		if dist := n.Distance(candidate); dist <= stitchThresholdMeters {
			d.Adjacency.Connect(n.ID, candidateID, StitchWayID, 1)
			return
		}
	}
}

// NodeByID looks up a node.
func (d *Db) NodeByID(id int64) (*Node, bool) {
	n, ok := d.Nodes[id]
	return n, ok
}

// WayByID looks up a way.
func (d *Db) WayByID(id int64) (*Way, bool) {
	w, ok := d.Ways[id]
	return w, ok
}

// Neighbours returns a node's adjacency triples.
func (d *Db) Neighbours(nodeID int64) []AdjEdge {
	return d.Adjacency.Get(nodeID)
}

// Distance returns the great-circle distance between two known nodes.
func (d *Db) Distance(a, b int64) (float64, bool) {
	na, oka := d.Nodes[a]
	nb, okb := d.Nodes[b]
	if !oka || !okb {
		return 0, false
	}
	return na.Distance(nb), true
}

// InitialNode returns the first node within dist metres of (lat, lon) that
// already participates in the adjacency map — used to seed a walk from a
// raw coordinate.
func (d *Db) InitialNode(lat, lon, dist float64) (int64, bool) {
	for _, candidateID := range d.Index.Around(lat, lon) {
		n := d.Nodes[candidateID]
		if n == nil || !d.Adjacency.Has(candidateID) {
			continue
		}
		if n.DistanceFrom(lat, lon) <= dist {
			return candidateID, true
		}
	}
	return 0, false
}

// LinkTransit records, for every loaded transit stop, the nearest OSM node
// within one metre, so the walker strategies can detect "standing at a
// transit stop" in O(1) during a walk.
func (d *Db) LinkTransit(tm *transit.Map) {
	for _, stop := range tm.Stops() {
		for _, candidateID := range d.Index.Around(stop.Lat, stop.Lon) {
			n := d.Nodes[candidateID]
			if n == nil {
				continue
			}
			if n.DistanceFrom(stop.Lat, stop.Lon) <= 1.0 {
				d.NodeToStop[candidateID] = stop.ID
				d.StopToNode[stop.ID] = candidateID
				break
			}
		}
	}
}

// TransitStopAt returns the stop id co-located with a node, if any.
func (d *Db) TransitStopAt(nodeID int64) (string, bool) {
	id, ok := d.NodeToStop[nodeID]
	return id, ok
}

// NodeForStop returns the OSM node co-located with a transit stop, if any.
func (d *Db) NodeForStop(stopID string) (int64, bool) {
	id, ok := d.StopToNode[stopID]
	return id, ok
}
