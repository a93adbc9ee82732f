package walkers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pathgrid/pathgrid/internal/graph"
	"github.com/pathgrid/pathgrid/internal/osm"
)

// buildLineStore builds a four-node line graph 1-2-3-4, node 4 tagged as a
// bar (POI).
func buildLineStore() *osm.Db {
	db := osm.NewDb()
	db.Ways[osm.StitchWayID] = &osm.Way{ID: osm.StitchWayID}
	way := &osm.Way{ID: 2, Nodes: []int64{1, 2, 3, 4}}
	way.Tags = []osm.Tag{{K: "highway", V: "footway"}}
	db.Ways[2] = way

	coords := []struct{ id int64; lat, lon float64 }{
		{1, 0, 0}, {2, 0, 0.0001}, {3, 0, 0.0002}, {4, 0, 0.0003},
	}
	for _, c := range coords {
		n := &osm.Node{ID: c.id, Lat: c.lat, Lon: c.lon}
		if c.id == 4 {
			n.Tags = []osm.Tag{{K: "amenity", V: "bar"}}
		}
		db.Nodes[c.id] = n
	}
	for i := 0; i+1 < len(coords); i++ {
		a, b := coords[i], coords[i+1]
		na, nb := db.Nodes[a.id], db.Nodes[b.id]
		db.Adjacency.Connect(a.id, b.id, 2, na.Distance(nb))
	}
	return db
}

func TestExploreFindsPOIWithinBudget(t *testing.T) {
	db := buildLineStore()
	budget := uint64(100)
	e := &Explore{
		Store:     db,
		MaxCost:   &budget,
		Predicate: func(n *osm.Node) bool { return n.IsPOIType("bar") },
	}
	res := graph.Walk[int64, Edge, State](e, 1)

	var foundBar bool
	for _, s := range res.Steps {
		if s.To == 4 {
			foundBar = true
		}
	}
	assert.True(t, foundBar)
}

func TestExploreRespectsMaxCost(t *testing.T) {
	db := buildLineStore()
	budget := uint64(15)
	e := &Explore{
		Store:     db,
		MaxCost:   &budget,
		Predicate: func(n *osm.Node) bool { return true },
	}
	res := graph.Walk[int64, Edge, State](e, 1)
	for _, s := range res.Steps {
		assert.Less(t, s.Total, budget)
	}
}

func TestSeekStopsAtTarget(t *testing.T) {
	db := buildLineStore()
	seek := NewSeek(db, nil, 4)
	res := graph.Walk[int64, Edge, State](seek, 1)

	var last *graph.Step[int64, Edge, State]
	for _, s := range res.Steps {
		if s.To == 4 {
			last = s
			break
		}
	}
	if assert.NotNil(t, last) {
		chain := last.Chain()
		assert.Equal(t, int64(1), chain[0].To)
		assert.Equal(t, int64(4), chain[len(chain)-1].To)
	}
}
