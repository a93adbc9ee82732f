package osm

import (
	"log"
	"strings"

	iradix "github.com/hashicorp/go-immutable-radix/v2"
	"github.com/pathgrid/pathgrid/internal/quadtree"
)

const nodeIndexCapacity = 2000

// NodePos is the quadtree.Point wrapper indexing a node's position.
type NodePos struct {
	Lat float64
	Lon float64
	ID  int64
}

func (p NodePos) X() float64 { return p.Lon }
func (p NodePos) Y() float64 { return p.Lat }

// NodeIndex is C3's trio of sub-indices: position (quadtree), POI category
// (map), and case-folded name/address (immutable radix trie, prefix
// searchable).
type NodeIndex struct {
	ByPos  *quadtree.Tree[NodePos]
	ByPoi  map[string][]int64
	byName *iradix.Tree[[]int64]
}

// NewNodeIndex creates an index over the bounding box of the loaded feed.
func NewNodeIndex(minLon, minLat, maxLon, maxLat float64) *NodeIndex {
	return &NodeIndex{
		ByPos:  quadtree.OfCapacity[NodePos](minLon, minLat, maxLon-minLon, maxLat-minLat, nodeIndexCapacity),
		ByPoi:  make(map[string][]int64),
		byName: iradix.New[[]int64](),
	}
}

// Insert indexes a node's position always, its POI categories always, its
// name only if it is a POI (road signs and other named-but-not-POI nodes
// would otherwise swamp name search), and its address whenever complete.
func (idx *NodeIndex) Insert(n *Node) {
	if !idx.ByPos.Insert(NodePos{Lat: n.Lat, Lon: n.Lon, ID: n.ID}) {
		log.Printf("osm: node %d lies outside the spatial index bounds, not indexed by position", n.ID)
	}

	for _, kind := range n.PoiTypes() {
		idx.ByPoi[kind] = append(idx.ByPoi[kind], n.ID)
	}

	if n.IsPOI() {
		if name, ok := n.Name(); ok {
			idx.indexString(name, n.ID)
		}
	}
	if addr, ok := n.Address(); ok {
		idx.indexString(addr, n.ID)
	}
}

func (idx *NodeIndex) indexString(s string, id int64) {
	key := []byte(foldCase(s))
	existing, _ := idx.byName.Get(key)
	updated := append(append([]int64{}, existing...), id)
	newTree, _, _ := idx.byName.Insert(key, updated)
	idx.byName = newTree
}

// Around returns the nearest candidate node ids for (lat, lon), leaf-scoped.
func (idx *NodeIndex) Around(lat, lon float64) []int64 {
	pts := idx.ByPos.Nearest(lon, lat)
	out := make([]int64, len(pts))
	for i, p := range pts {
		out[i] = p.ID
	}
	return out
}

// SquareFor returns the leaf cell id containing (lat, lon).
func (idx *NodeIndex) SquareFor(lat, lon float64) (uint64, bool) {
	cell := idx.ByPos.CellAt(lon, lat)
	if cell == nil {
		return 0, false
	}
	return cell.ID, true
}

// Matching returns the node ids whose indexed name/address has query as a
// case-folded prefix.
func (idx *NodeIndex) Matching(query string) []int64 {
	prefix := []byte(foldCase(query))
	var out []int64
	idx.byName.Root().WalkPrefix(prefix, func(k []byte, v []int64) bool {
		if strings.HasPrefix(string(k), string(prefix)) {
			out = append(out, v...)
		}
		return false
	})
	return out
}

// PoiTypes returns every indexed POI category.
func (idx *NodeIndex) PoiTypes() []string {
	out := make([]string, 0, len(idx.ByPoi))
	for k := range idx.ByPoi {
		out = append(out, k)
	}
	return out
}

// OfPoi returns node ids tagged with the given POI category.
func (idx *NodeIndex) OfPoi(kind string) []int64 {
	return idx.ByPoi[kind]
}
