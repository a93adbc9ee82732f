// Package scoring is the grid-cell scoring engine (C6): at build time it
// precomputes, for every spatial-index leaf cell, the minimum walking cost
// to each POI category within a radius; at query time it turns a wanted-POI
// set into a 0-100 proximity percentage for a cell.
package scoring

import (
	"github.com/pathgrid/pathgrid/internal/graph"
	"github.com/pathgrid/pathgrid/internal/osm"
	"github.com/pathgrid/pathgrid/internal/walkers"
)

const (
	seedSearchRadiusMeters = 500
	scoreWalkBudgetMeters  = 1500
)

// Square is one leaf cell's precomputed category->min-cost table.
type Square struct {
	CellID uint64             `json:"cell_id"`
	MinLon float64            `json:"min_lon"`
	MinLat float64            `json:"min_lat"`
	MaxLon float64            `json:"max_lon"`
	MaxLat float64            `json:"max_lat"`
	Scores map[string]float64 `json:"scores"`
}

// Build runs one Explore walk per populated leaf cell of store's spatial
// index and records the minimum cost to each POI category reached. Cells
// with no seed node within seedSearchRadiusMeters are skipped. Running one
// walk per cell is the dominant build-time cost; it is embarrassingly
// parallel over cells since the store is read-only by this point, but is
// run sequentially here to match the single-threaded build-phase contract.
func Build(store *osm.Db) map[uint64]*Square {
	out := make(map[uint64]*Square)

	for _, cell := range store.Index.ByPos.Enumerate() {
		cx := cell.X + cell.XSize/2 // lon
		cy := cell.Y + cell.YSize/2 // lat

		seed, ok := store.InitialNode(cy, cx, seedSearchRadiusMeters)
		if !ok {
			continue
		}

		budget := uint64(scoreWalkBudgetMeters)
		e := &walkers.Explore{
			Store:     store,
			MaxCost:   &budget,
			Predicate: func(n *osm.Node) bool { return n.IsPOI() },
		}
		res := graph.Walk[int64, walkers.Edge, walkers.State](e, seed)

		scores := make(map[string]float64)
		for _, step := range res.Steps {
			node, ok := store.NodeByID(step.To)
			if !ok {
				continue
			}
			for _, cat := range node.PoiTypes() {
				if cur, exists := scores[cat]; !exists || float64(step.Total) < cur {
					scores[cat] = float64(step.Total)
				}
			}
		}

		out[cell.ID] = &Square{
			CellID: cell.ID,
			MinLon: cell.X, MinLat: cell.Y,
			MaxLon: cell.X + cell.XSize, MaxLat: cell.Y + cell.YSize,
			Scores: scores,
		}
	}

	return out
}

// Score computes the 0-100 proximity percentage of sq against a wanted-POI
// budget map (category -> per-category budget D_k):
//
//	Σ max(0, D_k - sq.scores.get(k, D_k)) * 100 / (D_total * |W|)
//
// where D_total is the sum of the D_k, generalising the original's
// hardcoded single global D=1500 to a per-category budget map.
func Score(sq *Square, wanted map[string]uint64) int {
	if len(wanted) == 0 {
		return 0
	}
	var dTotal uint64
	for _, d := range wanted {
		dTotal += d
	}
	if dTotal == 0 {
		return 0
	}

	var sum float64
	for cat, budget := range wanted {
		have, ok := sq.Scores[cat]
		if !ok {
			have = float64(budget)
		}
		diff := float64(budget) - have
		if diff < 0 {
			diff = 0
		}
		sum += diff
	}

	pct := sum * 100 / (float64(dTotal) * float64(len(wanted)))
	return int(pct)
}
