// Package graph implements a generic best-first (A*-style) walker over an
// abstract graph of typed nodes and edges. The graph itself never appears as
// a concrete type here: callers supply a GraphWalker that knows how to
// enumerate neighbours, derive per-node state, and decide inclusion/stop —
// this package only drives the priority-queue relaxation loop and the set
// algebra over its results.
package graph

import "container/heap"

// Neighbour is one outgoing transition from a step: the edge taken, its
// cost, an admissible heuristic to the (optional) target, the destination
// node, and the walker state after taking it.
type Neighbour[N comparable, E any, S any] struct {
	Edge      E
	Cost      uint64
	Heuristic uint64
	To        N
	State     S
}

// GraphWalker supplies the five operations that parameterise a walk.
type GraphWalker[N comparable, E any, S any] interface {
	// InitialState returns the walker state at the start node.
	InitialState(node N) S
	// Neighbours enumerates outgoing transitions from prev.
	Neighbours(prev *Step[N, E, S]) []Neighbour[N, E, S]
	// GraphID is the layer key: nodes are distinct for relaxation purposes
	// when (GraphID, node) differs.
	GraphID(state S) uint64
	// Include reports whether step should be appended to the result set.
	Include(step *Step[N, E, S]) bool
	// Stop is an early-termination predicate over the result so far.
	Stop(res *WalkResult[N, E, S]) bool
}

// Step is an immutable record in the walk: a back-pointer to the previous
// step (nil at the root), the edge used to reach it, per-step and
// cumulative costs, the destination node, and the walker state. Steps are
// jointly owned by the frontier and the result list and are never mutated
// after construction.
type Step[N comparable, E any, S any] struct {
	From   *Step[N, E, S]
	Edge   *E
	Cost   uint64
	Total  uint64
	TotalF uint64
	To     N
	State  S
}

// Chain walks back-pointers from s to the root, returning steps in
// root-to-s order.
func (s *Step[N, E, S]) Chain() []*Step[N, E, S] {
	var rev []*Step[N, E, S]
	for cur := s; cur != nil; cur = cur.From {
		rev = append(rev, cur)
	}
	out := make([]*Step[N, E, S], len(rev))
	for i, st := range rev {
		out[len(rev)-1-i] = st
	}
	return out
}

// WalkResult holds every step the walker chose to include, plus a debug
// count of how many steps were actually popped and relaxed.
type WalkResult[N comparable, E any, S any] struct {
	Steps []*Step[N, E, S]
	NrInv uint64
}

// Intersect keeps only steps from a whose destination node also appears as
// a destination in b.
func Intersect[N comparable, E any, S any](a, b *WalkResult[N, E, S]) *WalkResult[N, E, S] {
	other := make(map[N]struct{}, len(b.Steps))
	for _, step := range b.Steps {
		other[step.To] = struct{}{}
	}
	mine := make(map[N]struct{}, len(a.Steps))
	for _, step := range a.Steps {
		mine[step.To] = struct{}{}
	}
	common := make(map[N]struct{})
	for n := range mine {
		if _, ok := other[n]; ok {
			common[n] = struct{}{}
		}
	}

	out := &WalkResult[N, E, S]{NrInv: a.NrInv}
	for _, step := range a.Steps {
		if _, ok := common[step.To]; ok {
			out.Steps = append(out.Steps, step)
		}
	}
	return out
}

// Union concatenates the step lists of a and b.
func Union[N comparable, E any, S any](a, b *WalkResult[N, E, S]) *WalkResult[N, E, S] {
	out := &WalkResult[N, E, S]{NrInv: a.NrInv + b.NrInv}
	out.Steps = make([]*Step[N, E, S], 0, len(a.Steps)+len(b.Steps))
	out.Steps = append(out.Steps, a.Steps...)
	out.Steps = append(out.Steps, b.Steps...)
	return out
}

type layerNode[N comparable] struct {
	graphID uint64
	node    N
}

// frontier is a min-heap on TotalF, ascending.
type frontier[N comparable, E any, S any] []*Step[N, E, S]

func (f frontier[N, E, S]) Len() int            { return len(f) }
func (f frontier[N, E, S]) Less(i, j int) bool  { return f[i].TotalF < f[j].TotalF }
func (f frontier[N, E, S]) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *frontier[N, E, S]) Push(x interface{}) { *f = append(*f, x.(*Step[N, E, S])) }
func (f *frontier[N, E, S]) Pop() interface{} {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// Walk runs a best-first relaxation from start, driven by walker. The best
// map is keyed by (layer, node) and tracked via presence (ok) rather than a
// numeric sentinel, so there is no risk of the g-cost ever colliding with an
// "unknown" marker near the numeric ceiling.
func Walk[N comparable, E any, S any](walker GraphWalker[N, E, S], start N) *WalkResult[N, E, S] {
	pq := &frontier[N, E, S]{}
	heap.Init(pq)

	best := make(map[layerNode[N]]uint64)

	res := &WalkResult[N, E, S]{}

	startState := walker.InitialState(start)
	heap.Push(pq, &Step[N, E, S]{
		To:    start,
		State: startState,
	})
	best[layerNode[N]{walker.GraphID(startState), start}] = 0

	for pq.Len() > 0 {
		if walker.Stop(res) {
			break
		}

		step := heap.Pop(pq).(*Step[N, E, S])

		key := layerNode[N]{walker.GraphID(step.State), step.To}
		if known, ok := best[key]; ok && step.Total > known {
			continue
		}

		res.NrInv++

		for _, nb := range walker.Neighbours(step) {
			total := step.Total + nb.Cost
			nkey := layerNode[N]{walker.GraphID(nb.State), nb.To}
			known, ok := best[nkey]

			if ok && total >= known {
				continue
			}
			best[nkey] = total

			edge := nb.Edge
			newStep := &Step[N, E, S]{
				From:   step,
				Edge:   &edge,
				Cost:   nb.Cost,
				Total:  total,
				TotalF: total + nb.Heuristic,
				To:     nb.To,
				State:  nb.State,
			}

			if walker.Include(newStep) {
				res.Steps = append(res.Steps, newStep)
			}
			heap.Push(pq, newStep)
		}
	}

	return res
}
