package quadtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pt struct {
	x, y float64
}

func (p pt) X() float64 { return p.x }
func (p pt) Y() float64 { return p.y }

func TestInsertAndNearestFindsExactMatch(t *testing.T) {
	tree := New[pt](0, 0, 100, 100)
	pts := []pt{{1, 1}, {50, 50}, {99, 99}, {10, 90}}
	for _, p := range pts {
		ok := tree.Insert(p)
		assert.True(t, ok)
	}
	for _, p := range pts {
		found := tree.Nearest(p.x, p.y)
		assert.Contains(t, found, p)
	}
}

func TestOutOfBoundsInsertDropped(t *testing.T) {
	tree := New[pt](0, 0, 10, 10)
	ok := tree.Insert(pt{100, 100})
	assert.False(t, ok)
	assert.Empty(t, tree.Enumerate()[0].Values())
}

func TestEnumerateCountsAllPoints(t *testing.T) {
	tree := OfCapacity[pt](0, 0, 100, 100, 4)
	n := 0
	for i := 0; i < 40; i++ {
		x := float64(i%10) * 10
		y := float64(i/10) * 10
		tree.Insert(pt{x, y})
		n++
	}
	total := 0
	for _, leaf := range tree.Enumerate() {
		total += len(leaf.Values())
	}
	assert.Equal(t, n, total)
}

func TestNearestIsNonDecreasingDistance(t *testing.T) {
	tree := OfCapacity[pt](0, 0, 100, 100, 50)
	for _, p := range []pt{{5, 5}, {1, 1}, {9, 9}, {3, 3}} {
		tree.Insert(p)
	}
	res := tree.Nearest(0, 0)
	for i := 1; i < len(res); i++ {
		prev := res[i-1].x*res[i-1].x + res[i-1].y*res[i-1].y
		cur := res[i].x*res[i].x + res[i].y*res[i].y
		assert.LessOrEqual(t, prev, cur)
	}
}

// A 4x4 grid of centres with capacity 1 must split into exactly 16 leaves,
// each holding exactly one point.
func TestGridOfSixteenCapacityOneSplitsIntoSixteenLeaves(t *testing.T) {
	tree := OfCapacity[pt](0, 0, 4, 4, 1)
	for gy := 0; gy < 4; gy++ {
		for gx := 0; gx < 4; gx++ {
			tree.Insert(pt{float64(gx) + 0.5, float64(gy) + 0.5})
		}
	}
	leaves := tree.Enumerate()
	assert.Len(t, leaves, 16)
	for _, leaf := range leaves {
		assert.Len(t, leaf.Values(), 1)
	}
}

func TestSplitAxisPicksLongerAxisXOnTie(t *testing.T) {
	tree := OfCapacity[pt](0, 0, 10, 10, 1)
	tree.Insert(pt{1, 1})
	tree.Insert(pt{9, 9}) // triggers split; square box ties -> x wins
	leaves := tree.Enumerate()
	assert.Len(t, leaves, 2)
	for _, leaf := range leaves {
		assert.Equal(t, 5.0, leaf.XSize)
		assert.Equal(t, 10.0, leaf.YSize)
	}
}

func TestCellIDEncodesPath(t *testing.T) {
	tree := OfCapacity[pt](0, 0, 10, 10, 1)
	tree.Insert(pt{1, 1})
	tree.Insert(pt{9, 1})
	left := tree.CellAt(1, 1)
	right := tree.CellAt(9, 1)
	assert.Equal(t, uint64(2), left.ID)
	assert.Equal(t, uint64(3), right.ID)
}
