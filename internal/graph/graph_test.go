package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// edge is a trivial edge payload used only by these tests.
type edge struct{ name string }

// line graph: "a" -1- "b" -1- "c" -1- "d", walked with an admissible
// (zero) heuristic toward a target.
type lineWalker struct {
	target string
}

func (w lineWalker) InitialState(node string) int { return 0 }
func (w lineWalker) GraphID(state int) uint64      { return 0 }
func (w lineWalker) Include(step *Step[string, edge, int]) bool { return true }
func (w lineWalker) Stop(res *WalkResult[string, edge, int]) bool {
	for _, s := range res.Steps {
		if s.To == w.target {
			return true
		}
	}
	return false
}

var lineAdj = map[string][]string{
	"a": {"b"},
	"b": {"a", "c"},
	"c": {"b", "d"},
	"d": {"c"},
}

func (w lineWalker) Neighbours(prev *Step[string, edge, int]) []Neighbour[string, edge, int] {
	var out []Neighbour[string, edge, int]
	for _, n := range lineAdj[prev.To] {
		out = append(out, Neighbour[string, edge, int]{
			Edge: edge{name: prev.To + "-" + n},
			Cost: 1,
			To:   n,
		})
	}
	return out
}

func TestWalkFindsShortestCostToTarget(t *testing.T) {
	res := Walk[string, edge, int](lineWalker{target: "d"}, "a")
	var found *Step[string, edge, int]
	for _, s := range res.Steps {
		if s.To == "d" {
			found = s
			break
		}
	}
	if assert.NotNil(t, found) {
		assert.Equal(t, uint64(3), found.Total)
	}
}

// boundedWalker never stops early; used to check the max_cost bound.
type boundedWalker struct {
	maxCost uint64
}

func (w boundedWalker) InitialState(node string) int { return 0 }
func (w boundedWalker) GraphID(state int) uint64      { return 0 }
func (w boundedWalker) Include(step *Step[string, edge, int]) bool { return true }
func (w boundedWalker) Stop(res *WalkResult[string, edge, int]) bool { return false }
func (w boundedWalker) Neighbours(prev *Step[string, edge, int]) []Neighbour[string, edge, int] {
	var out []Neighbour[string, edge, int]
	for _, n := range lineAdj[prev.To] {
		total := prev.Total + 1
		if total >= w.maxCost {
			continue
		}
		out = append(out, Neighbour[string, edge, int]{Edge: edge{}, Cost: 1, To: n})
	}
	return out
}

func TestWalkRespectsMaxCostBound(t *testing.T) {
	res := Walk[string, edge, int](boundedWalker{maxCost: 2}, "a")
	for _, s := range res.Steps {
		assert.Less(t, s.Total, uint64(2))
	}
}

func TestIntersectKeepsCommonDestinations(t *testing.T) {
	a := &WalkResult[string, edge, int]{Steps: []*Step[string, edge, int]{
		{To: "x"}, {To: "y"},
	}}
	b := &WalkResult[string, edge, int]{Steps: []*Step[string, edge, int]{
		{To: "y"}, {To: "z"},
	}}
	out := Intersect(a, b)
	assert.Len(t, out.Steps, 1)
	assert.Equal(t, "y", out.Steps[0].To)
}

func TestUnionConcatenates(t *testing.T) {
	a := &WalkResult[string, edge, int]{Steps: []*Step[string, edge, int]{{To: "x"}}}
	b := &WalkResult[string, edge, int]{Steps: []*Step[string, edge, int]{{To: "y"}}}
	out := Union(a, b)
	assert.Len(t, out.Steps, 2)
}

// layeredWalker reaches "mid" from "start" twice: under graph_id 0 at cost 5
// and under graph_id 1 at cost 1, exercising that the two layers keep
// independent bests for the same node.
type layeredState struct{ layer uint64 }
type layeredWalker struct{}

func (w layeredWalker) InitialState(node string) layeredState { return layeredState{0} }
func (w layeredWalker) GraphID(s layeredState) uint64          { return s.layer }
func (w layeredWalker) Include(step *Step[string, edge, layeredState]) bool { return true }
func (w layeredWalker) Stop(res *WalkResult[string, edge, layeredState]) bool {
	return res.NrInv > 20
}
func (w layeredWalker) Neighbours(prev *Step[string, edge, layeredState]) []Neighbour[string, edge, layeredState] {
	if prev.To == "start" {
		return []Neighbour[string, edge, layeredState]{
			{Edge: edge{}, Cost: 5, To: "mid", State: layeredState{0}},
			{Edge: edge{}, Cost: 1, To: "mid", State: layeredState{1}},
		}
	}
	return nil
}

func TestWalkTracksDistinctLayersForSameNode(t *testing.T) {
	res := Walk[string, edge, layeredState](layeredWalker{}, "start")
	var layer0, layer1 uint64
	var sawLayer0, sawLayer1 bool
	for _, s := range res.Steps {
		if s.To != "mid" {
			continue
		}
		if s.State.layer == 0 {
			layer0 = s.Total
			sawLayer0 = true
		} else {
			layer1 = s.Total
			sawLayer1 = true
		}
	}
	assert.True(t, sawLayer0)
	assert.True(t, sawLayer1)
	assert.NotEqual(t, layer0, layer1)
}
