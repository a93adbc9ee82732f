package query

import (
	"log"

	"github.com/pathgrid/pathgrid/internal/graph"
	"github.com/pathgrid/pathgrid/internal/osm"
	"github.com/pathgrid/pathgrid/internal/scoring"
	"github.com/pathgrid/pathgrid/internal/transit"
	"github.com/pathgrid/pathgrid/internal/walkers"
)

// Result is the instantiated walk-result type every pipeline function here
// produces.
type Result = graph.WalkResult[int64, walkers.Edge, walkers.State]

func categoryPredicate(kind string) func(*osm.Node) bool {
	return func(n *osm.Node) bool { return n.IsPOIType(kind) }
}

func exploreFrom(store *osm.Db, tm *transit.Map, start int64, budget uint64, predicate func(*osm.Node) bool) *Result {
	b := budget
	e := &walkers.Explore{Store: store, Transit: tm, MaxCost: &b, Predicate: predicate}
	return graph.Walk[int64, walkers.Edge, walkers.State](e, start)
}

func intersectOrInit(acc, next *Result) *Result {
	if acc == nil {
		return next
	}
	return graph.Intersect(acc, next)
}

func unionOrInit(acc, next *Result) *Result {
	if acc == nil {
		return next
	}
	return graph.Union(acc, next)
}

// RunMultiIc resolves a MultiIc request: Near/OnTheWay/DefinedByPoi legs are
// each walked and intersected (DefinedByPoi's per-seed walks are first
// unioned together, since any one of its seed POIs satisfying the leg is
// enough), then any NearPoi legs are applied as a late per-candidate filter
// over the surviving nodes.
func RunMultiIc(store *osm.Db, tm *transit.Map, req MultiIc) (*Result, error) {
	predicate := categoryPredicate(req.Poi)

	var acc *Result
	var poiUnion *Result
	var nearPoi []Constraint

	for _, c := range req.Constraints {
		switch c.Kind {
		case KindNear:
			start, err := c.Point.Resolve(store)
			if err != nil {
				return nil, err
			}
			acc = intersectOrInit(acc, exploreFrom(store, tm, start, c.Budget, predicate))

		case KindOnTheWay:
			start, err := c.From.Resolve(store)
			if err != nil {
				return nil, err
			}
			target, err := c.To.Resolve(store)
			if err != nil {
				return nil, err
			}
			e := &walkers.Explore{Store: store, Transit: tm, Target: &target, Predicate: predicate}
			res := graph.Walk[int64, walkers.Edge, walkers.State](e, start)
			acc = intersectOrInit(acc, res)

		case KindDefinedByPoi:
			for _, seed := range store.Index.OfPoi(c.PoiKind) {
				res := exploreFrom(store, tm, seed, c.Budget, predicate)
				poiUnion = unionOrInit(poiUnion, res)
			}

		case KindNearPoi:
			nearPoi = append(nearPoi, c)

		default:
			log.Printf("query: ignoring unknown constraint kind %q", c.Kind)
		}
	}

	if poiUnion != nil {
		acc = intersectOrInit(acc, poiUnion)
	}
	if acc == nil {
		acc = &Result{}
	}

	if len(nearPoi) > 0 {
		filtered := acc.Steps[:0:0]
		for _, step := range acc.Steps {
			if survivesNearPoi(store, tm, step.To, nearPoi) {
				filtered = append(filtered, step)
			}
		}
		acc = &Result{Steps: filtered, NrInv: acc.NrInv}
	}

	return acc, nil
}

func survivesNearPoi(store *osm.Db, tm *transit.Map, node int64, constraints []Constraint) bool {
	for _, c := range constraints {
		res := exploreFrom(store, tm, node, c.Budget, categoryPredicate(c.PoiKind))
		if len(res.Steps) == 0 {
			return false
		}
	}
	return true
}

// RunScore resolves a ScoreRequest: every Near leg contributes its reachable
// node set (intersected across legs, matching RunMultiIc's Near semantics),
// which is then mapped to the precomputed grid cells containing those nodes.
// NearPoi legs contribute to the returned wanted-budget map rather than to
// the cell set; every other kind is logged and skipped, since it has no
// cell-level meaning.
func RunScore(store *osm.Db, tm *transit.Map, scores map[uint64]*scoring.Square, req ScoreRequest) ([]*scoring.Square, map[string]uint64, error) {
	wanted := make(map[string]uint64)
	var acc *Result

	for _, c := range req.Constraints {
		switch c.Kind {
		case KindNear:
			start, err := c.Point.Resolve(store)
			if err != nil {
				return nil, nil, err
			}
			acc = intersectOrInit(acc, exploreFrom(store, tm, start, c.Budget, func(*osm.Node) bool { return true }))
		case KindNearPoi:
			wanted[c.PoiKind] = c.Budget
		default:
			log.Printf("query: ignoring %s constraint in score request", c.Kind)
		}
	}

	if acc == nil {
		return nil, wanted, nil
	}

	seen := make(map[uint64]struct{})
	var out []*scoring.Square
	for _, step := range acc.Steps {
		node, ok := store.NodeByID(step.To)
		if !ok {
			continue
		}
		cellID, ok := store.Index.SquareFor(node.Lat, node.Lon)
		if !ok {
			continue
		}
		if _, dup := seen[cellID]; dup {
			continue
		}
		seen[cellID] = struct{}{}
		if sq, ok := scores[cellID]; ok {
			out = append(out, sq)
		}
	}
	return out, wanted, nil
}
