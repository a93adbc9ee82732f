package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pathgrid/pathgrid/internal/osm"
)

// buildForkStore builds a small graph: 1-2-3-4 (node 4 tagged amenity=bar)
// with a branch 3-5 (node 5 tagged amenity=cafe).
func buildForkStore() *osm.Db {
	db := osm.NewDb()
	db.Ways[osm.StitchWayID] = &osm.Way{ID: osm.StitchWayID}
	way := &osm.Way{ID: 2, Nodes: []int64{1, 2, 3, 4}}
	way.Tags = []osm.Tag{{K: "highway", V: "footway"}}
	db.Ways[2] = way
	branch := &osm.Way{ID: 3, Nodes: []int64{3, 5}}
	branch.Tags = []osm.Tag{{K: "highway", V: "footway"}}
	db.Ways[3] = branch

	coords := []struct {
		id       int64
		lat, lon float64
	}{
		{1, 0, 0}, {2, 0, 0.0001}, {3, 0, 0.0002}, {4, 0, 0.0003}, {5, 0.0001, 0.0002},
	}
	for _, c := range coords {
		n := &osm.Node{ID: c.id, Lat: c.lat, Lon: c.lon}
		switch c.id {
		case 4:
			n.Tags = []osm.Tag{{K: "amenity", V: "bar"}}
		case 5:
			n.Tags = []osm.Tag{{K: "amenity", V: "cafe"}}
		}
		db.Nodes[c.id] = n
	}
	conns := [][2]int64{{1, 2}, {2, 3}, {3, 4}, {3, 5}}
	wayFor := map[[2]int64]int64{{1, 2}: 2, {2, 3}: 2, {3, 4}: 2, {3, 5}: 3}
	for _, pair := range conns {
		na, nb := db.Nodes[pair[0]], db.Nodes[pair[1]]
		db.Adjacency.Connect(pair[0], pair[1], wayFor[pair], na.Distance(nb))
	}

	db.Index = osm.NewNodeIndex(0, 0, 0.0003, 0.0001)
	for _, n := range db.Nodes {
		db.Index.Insert(n)
	}
	return db
}

func TestRunMultiIcNearFindsReachablePoi(t *testing.T) {
	db := buildForkStore()
	req := MultiIc{
		Poi: "bar",
		Constraints: []Constraint{
			{Kind: KindNear, Point: Point{NodeID: int64Ptr(1)}, Budget: 1000},
		},
	}
	res, err := RunMultiIc(db, nil, req)
	assert.NoError(t, err)
	assert.True(t, containsNode(res, 4))
}

func TestRunMultiIcDefinedByPoiUnionsSeeds(t *testing.T) {
	db := buildForkStore()
	req := MultiIc{
		Poi: "bar",
		Constraints: []Constraint{
			{Kind: KindDefinedByPoi, PoiKind: "cafe", Budget: 1000},
		},
	}
	res, err := RunMultiIc(db, nil, req)
	assert.NoError(t, err)
	assert.True(t, containsNode(res, 4))
}

func TestRunMultiIcNearPoiFiltersSurvivors(t *testing.T) {
	db := buildForkStore()
	req := MultiIc{
		Poi: "bar",
		Constraints: []Constraint{
			{Kind: KindNear, Point: Point{NodeID: int64Ptr(1)}, Budget: 1000},
			{Kind: KindNearPoi, PoiKind: "cafe", Budget: 1000},
		},
	}
	res, err := RunMultiIc(db, nil, req)
	assert.NoError(t, err)
	assert.True(t, containsNode(res, 4))
}

func TestRunMultiIcNearPoiExcludesUnreachable(t *testing.T) {
	db := buildForkStore()
	req := MultiIc{
		Poi: "bar",
		Constraints: []Constraint{
			{Kind: KindNear, Point: Point{NodeID: int64Ptr(1)}, Budget: 1000},
			{Kind: KindNearPoi, PoiKind: "zoo", Budget: 1000},
		},
	}
	res, err := RunMultiIc(db, nil, req)
	assert.NoError(t, err)
	assert.False(t, containsNode(res, 4))
}

func TestPointResolveUnknownNodeErrors(t *testing.T) {
	db := buildForkStore()
	_, err := Point{NodeID: int64Ptr(999)}.Resolve(db)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func containsNode(res *Result, id int64) bool {
	for _, s := range res.Steps {
		if s.To == id {
			return true
		}
	}
	return false
}

func int64Ptr(v int64) *int64 { return &v }
