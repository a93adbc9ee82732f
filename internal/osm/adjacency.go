package osm

// AdjEdge is one (way, cost, neighbour) triple in the adjacency map.
type AdjEdge struct {
	WayID int64
	Cost  float64
	To    int64
}

// AdjacencyMap maps a node id to its outgoing adjacency triples.
type AdjacencyMap map[int64][]AdjEdge

// Connect inserts a bidirectional edge between a and b along wayID with the
// given cost. Both directions are added symmetrically.
func (m AdjacencyMap) Connect(a, b, wayID int64, cost float64) {
	m[a] = append(m[a], AdjEdge{WayID: wayID, Cost: cost, To: b})
	m[b] = append(m[b], AdjEdge{WayID: wayID, Cost: cost, To: a})
}

// Get returns the adjacency triples for a node, or nil if it has none.
func (m AdjacencyMap) Get(node int64) []AdjEdge {
	return m[node]
}

// Has reports whether a node participates in the adjacency map at all.
func (m AdjacencyMap) Has(node int64) bool {
	_, ok := m[node]
	return ok
}
