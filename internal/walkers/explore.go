// Package walkers holds the concrete graph.GraphWalker strategies (C5) that
// drive searches over the OSM store and its transit overlay.
package walkers

import (
	"hash/fnv"

	"github.com/pathgrid/pathgrid/internal/graph"
	"github.com/pathgrid/pathgrid/internal/osm"
	"github.com/pathgrid/pathgrid/internal/transit"
)

// EdgeKind distinguishes a physical highway/stitch hop from a transit ride.
type EdgeKind int

const (
	EdgeWalk EdgeKind = iota
	EdgeRide
)

// Edge is the C2 edge payload for walks over the OSM+transit graph.
type Edge struct {
	Kind  EdgeKind
	WayID int64
	Trip  string
}

// State is the per-node walker state: a reserved speed multiplier (always 1
// today, reserved for faster modes) and, when boarded, the active trip
// cursor.
type State struct {
	Speed  uint64
	OnTrip *transit.Cursor
}

// Step is shorthand for the instantiated graph.Step type this package works
// with throughout.
type Step = graph.Step[int64, Edge, State]

// tripLayerID derives a stable, non-zero layer id from a trip id, so
// "aboard trip X" is always distinct from the on-foot layer (0).
func tripLayerID(tripID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(tripID))
	id := h.Sum64()
	if id == 0 {
		return 1
	}
	return id
}

// Explore is the general-purpose strategy: walk outward from a start node,
// optionally bounded by max cost, optionally seeking a target, including
// any step whose destination satisfies predicate or equals the target.
type Explore struct {
	Store   *osm.Db
	Transit *transit.Map // may be nil to disable transit boarding
	MaxCost *uint64
	Target  *int64
	// Predicate decides inclusion for destinations that are not the
	// target. A nil predicate never includes on that basis alone.
	Predicate func(*osm.Node) bool
	// AlwaysInclude, when set, includes every expanded step regardless of
	// predicate/target — used by Seek to render every hop of a rendered
	// path, not just POI matches.
	AlwaysInclude bool
}

// NewSeek builds the target-seeking variant described in the walker
// strategies component: every expanded step is included (so the full
// explored frontier toward the target can be rendered), and the walk stops
// as soon as the target is reached.
func NewSeek(store *osm.Db, tm *transit.Map, target int64) *Explore {
	return &Explore{Store: store, Transit: tm, Target: &target, AlwaysInclude: true}
}

func (e *Explore) InitialState(node int64) State {
	return State{Speed: 1}
}

func (e *Explore) GraphID(s State) uint64 {
	if s.OnTrip != nil {
		return tripLayerID(s.OnTrip.Trip.ID)
	}
	return 0
}

func (e *Explore) heuristic(nodeID int64) uint64 {
	if e.Target == nil {
		return 0
	}
	d, ok := e.Store.Distance(nodeID, *e.Target)
	if !ok {
		return 0
	}
	return uint64(d)
}

func (e *Explore) withinBudget(prevTotal, addCost uint64) bool {
	if e.MaxCost == nil {
		return true
	}
	return prevTotal+addCost < *e.MaxCost
}

func (e *Explore) Neighbours(prev *Step) []graph.Neighbour[int64, Edge, State] {
	var out []graph.Neighbour[int64, Edge, State]

	for _, adj := range e.Store.Neighbours(prev.To) {
		way, ok := e.Store.WayByID(adj.WayID)
		if !ok || !way.IsHighway() {
			continue
		}
		cost := uint64(adj.Cost)
		if !e.withinBudget(prev.Total, cost) {
			continue
		}
		out = append(out, graph.Neighbour[int64, Edge, State]{
			Edge:      Edge{Kind: EdgeWalk, WayID: adj.WayID},
			Cost:      cost,
			Heuristic: e.heuristic(adj.To),
			To:        adj.To,
			State:     State{Speed: 1},
		})
	}

	if e.Transit == nil {
		return out
	}
	stopID, ok := e.Store.TransitStopAt(prev.To)
	if !ok {
		return out
	}
	for _, cursor := range e.Transit.NextTrips(stopID) {
		nextStop, ok := cursor.NextStop()
		if !ok {
			continue
		}
		dwell := cursor.NextTime()
		if dwell <= 0 {
			continue
		}
		nextNodeID, ok := e.Store.NodeForStop(nextStop.StopID)
		if !ok {
			continue
		}
		cost := uint64(dwell)
		if !e.withinBudget(prev.Total, cost) {
			continue
		}
		advanced := cursor
		out = append(out, graph.Neighbour[int64, Edge, State]{
			Edge:      Edge{Kind: EdgeRide, Trip: cursor.Trip.ID},
			Cost:      cost,
			Heuristic: e.heuristic(nextNodeID),
			To:        nextNodeID,
			State:     State{Speed: 1, OnTrip: &advanced},
		})
	}
	return out
}

func (e *Explore) Include(step *Step) bool {
	if e.AlwaysInclude {
		return true
	}
	if e.Target != nil && step.To == *e.Target {
		return true
	}
	if e.Predicate == nil {
		return false
	}
	n, ok := e.Store.NodeByID(step.To)
	return ok && e.Predicate(n)
}

func (e *Explore) Stop(res *graph.WalkResult[int64, Edge, State]) bool {
	if e.Target == nil {
		return false
	}
	for _, s := range res.Steps {
		if s.To == *e.Target {
			return true
		}
	}
	return false
}
