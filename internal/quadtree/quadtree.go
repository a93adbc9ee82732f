// Package quadtree implements a capacity-bounded, axis-aligned 2-D spatial
// index. It is a leaf-scoped nearest-neighbour structure, not a true k-NN
// tree: callers that need exact proximity guarantees enforce them above it
// (see internal/osm's 35 m stitch threshold).
package quadtree

// Point is anything that can be placed in the tree.
type Point interface {
	X() float64
	Y() float64
}

const defaultCapacity = 200

// Cell is one node of the tree: either a leaf holding up to Capacity points,
// or an internal node with exactly two children. Id encodes the root-to-leaf
// path: starting from 1, each descent does id = id<<1 | (0 for left, 1 for
// right).
type Cell[T Point] struct {
	ID                 uint64
	X, Y               float64
	XSize, YSize       float64
	capacity           int
	values             []T
	left, right        *Cell[T]
}

// IsLeaf reports whether this cell has not yet split.
func (c *Cell[T]) IsLeaf() bool {
	return c.left == nil
}

// Bounds returns the cell's bounding box.
func (c *Cell[T]) Bounds() (x, y, xsize, ysize float64) {
	return c.X, c.Y, c.XSize, c.YSize
}

// Values returns this leaf's points. Only meaningful on a leaf.
func (c *Cell[T]) Values() []T {
	return c.values
}

func newCell[T Point](id uint64, x, y, xsize, ysize float64, capacity int) *Cell[T] {
	return &Cell[T]{ID: id, X: x, Y: y, XSize: xsize, YSize: ysize, capacity: capacity}
}

// splitsOnX reports which axis the *current* dimensions route on. This is
// deliberately recomputed at every descent from the cell's own size rather
// than cached at split time, so routing always agrees with how the cell
// would split right now.
func (c *Cell[T]) splitsOnX() bool {
	return c.XSize >= c.YSize
}

func (c *Cell[T]) contains(x, y float64) bool {
	return x >= c.X && x <= c.X+c.XSize && y >= c.Y && y <= c.Y+c.YSize
}

// stepTowards returns the child that (x, y) routes to. Only valid on an
// internal node.
func (c *Cell[T]) stepTowards(x, y float64) *Cell[T] {
	if c.splitsOnX() {
		half := c.X + c.XSize/2
		if x <= half {
			return c.left
		}
		return c.right
	}
	half := c.Y + c.YSize/2
	if y <= half {
		return c.left
	}
	return c.right
}

// split turns this leaf into an internal node, creating two children along
// the longer axis (x wins ties) and redistributing existing values.
func (c *Cell[T]) split() {
	var left, right *Cell[T]
	if c.splitsOnX() {
		half := c.XSize / 2
		left = newCell[T](c.ID<<1, c.X, c.Y, half, c.YSize, c.capacity)
		right = newCell[T](c.ID<<1|1, c.X+half, c.Y, c.XSize-half, c.YSize, c.capacity)
	} else {
		half := c.YSize / 2
		left = newCell[T](c.ID<<1, c.X, c.Y, c.XSize, half, c.capacity)
		right = newCell[T](c.ID<<1|1, c.X, c.Y+half, c.XSize, c.YSize-half, c.capacity)
	}

	c.left, c.right = left, right

	old := c.values
	c.values = nil
	for _, v := range old {
		c.stepTowards(v.X(), v.Y()).insertDescend(v)
	}
}

func (c *Cell[T]) insertDescend(p T) {
	if !c.IsLeaf() {
		c.stepTowards(p.X(), p.Y()).insertDescend(p)
		return
	}
	if len(c.values) >= c.capacity {
		c.split()
		c.stepTowards(p.X(), p.Y()).insertDescend(p)
		return
	}
	c.values = append(c.values, p)
}

func (c *Cell[T]) leafAt(x, y float64) *Cell[T] {
	if c.IsLeaf() {
		return c
	}
	return c.stepTowards(x, y).leafAt(x, y)
}

func (c *Cell[T]) collectLeaves(out *[]*Cell[T]) {
	if c.IsLeaf() {
		*out = append(*out, c)
		return
	}
	c.left.collectLeaves(out)
	c.right.collectLeaves(out)
}

// Tree is a capacity-bounded quadtree over a fixed bounding box.
type Tree[T Point] struct {
	root     *Cell[T]
	capacity int
}

// New creates a tree over the box (x, y, xsize, ysize) with the default
// per-leaf capacity (200).
func New[T Point](x, y, xsize, ysize float64) *Tree[T] {
	return OfCapacity[T](x, y, xsize, ysize, defaultCapacity)
}

// OfCapacity creates a tree with an explicit per-leaf capacity.
func OfCapacity[T Point](x, y, xsize, ysize float64, capacity int) *Tree[T] {
	return &Tree[T]{
		root:     newCell[T](1, x, y, xsize, ysize, capacity),
		capacity: capacity,
	}
}

// Insert adds a point. Out-of-bounds points are reported via ok=false and
// must be handled (logged+dropped) by the caller; the tree itself never
// panics on them.
func (t *Tree[T]) Insert(p T) (ok bool) {
	if !t.root.contains(p.X(), p.Y()) {
		return false
	}
	t.root.insertDescend(p)
	return true
}

// CellAt returns the leaf cell containing (x, y), or nil if out of bounds.
func (t *Tree[T]) CellAt(x, y float64) *Cell[T] {
	if !t.root.contains(x, y) {
		return nil
	}
	return t.root.leafAt(x, y)
}

// Nearest returns the leaf containing (x, y)'s points, sorted by ascending
// squared Euclidean distance to (x, y). This is leaf-scoped: points in
// sibling leaves are never considered.
func (t *Tree[T]) Nearest(x, y float64) []T {
	cell := t.CellAt(x, y)
	if cell == nil {
		return nil
	}
	out := make([]T, len(cell.values))
	copy(out, cell.values)

	sq := func(p T) float64 {
		dx := p.X() - x
		dy := p.Y() - y
		return dx*dx + dy*dy
	}
	// Simple stable insertion sort: leaf sizes are bounded by capacity, so
	// this never needs to be asymptotically fancy.
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && sq(out[j-1]) > sq(out[j]) {
			out[j-1], out[j] = out[j], out[j-1]
			j--
		}
	}
	return out
}

// Enumerate yields every leaf cell exactly once, in an unspecified order.
func (t *Tree[T]) Enumerate() []*Cell[T] {
	var out []*Cell[T]
	t.root.collectLeaves(&out)
	return out
}
