package api

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pathgrid/pathgrid/internal/cache"
	"github.com/pathgrid/pathgrid/internal/db"
	"github.com/pathgrid/pathgrid/internal/geojson"
	"github.com/pathgrid/pathgrid/internal/graph"
	"github.com/pathgrid/pathgrid/internal/osm"
	"github.com/pathgrid/pathgrid/internal/query"
	"github.com/pathgrid/pathgrid/internal/scoring"
	"github.com/pathgrid/pathgrid/internal/walkers"
)

func nodePoint(n *osm.Node) geojson.Point {
	return geojson.Point{Lon: n.Lon, Lat: n.Lat}
}

// pathFeatures renders one Feature per included step: a MultiLineString
// containing exactly the edge from the step's predecessor to its node.
func pathFeatures(store *osm.Db, res *graph.WalkResult[int64, walkers.Edge, walkers.State]) []geojson.Feature {
	features := make([]geojson.Feature, 0, len(res.Steps))
	for _, step := range res.Steps {
		if step.From == nil {
			continue
		}
		from, ok1 := store.NodeByID(step.From.To)
		to, ok2 := store.NodeByID(step.To)
		if !ok1 || !ok2 {
			continue
		}
		seg := geojson.Segment{From: nodePoint(from), To: nodePoint(to)}
		id := step.To
		features = append(features, geojson.NewFeature(
			geojson.Properties{NodeID: &id},
			geojson.NewMultiLineString([]geojson.Segment{seg}),
		))
	}
	return features
}

// Path handles GET /graph/path?from=<node_id>&to=<node_id>.
func Path(c *fiber.Ctx) error {
	deps := graphDeps(c)

	from, err := strconv.ParseInt(c.Query("from"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid 'from' node id"})
	}
	to, err := strconv.ParseInt(c.Query("to"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid 'to' node id"})
	}
	if _, ok := deps.Store.NodeByID(from); !ok {
		return c.Status(404).JSON(fiber.Map{"error": "unknown 'from' node"})
	}
	if _, ok := deps.Store.NodeByID(to); !ok {
		return c.Status(404).JSON(fiber.Map{"error": "unknown 'to' node"})
	}

	seek := walkers.NewSeek(deps.Store, deps.Transit, to)
	res := graph.Walk[int64, walkers.Edge, walkers.State](seek, from)

	return c.JSON(geojson.NewFeatureCollection(pathFeatures(deps.Store, res)))
}

// Isochrone handles GET /graph/isochrone?node=<node_id>&dist=<metres>.
func Isochrone(c *fiber.Ctx) error {
	deps := graphDeps(c)

	node, err := strconv.ParseInt(c.Query("node"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid 'node' id"})
	}
	dist, err := strconv.ParseFloat(c.Query("dist"), 64)
	if err != nil || dist <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "invalid 'dist'"})
	}
	if _, ok := deps.Store.NodeByID(node); !ok {
		return c.Status(404).JSON(fiber.Map{"error": "unknown node"})
	}

	budget := uint64(dist)
	e := &walkers.Explore{
		Store: deps.Store, Transit: deps.Transit, MaxCost: &budget,
		AlwaysInclude: true,
	}
	res := graph.Walk[int64, walkers.Edge, walkers.State](e, node)

	var segments []geojson.Segment
	for _, step := range res.Steps {
		if step.From == nil {
			continue
		}
		from, ok1 := deps.Store.NodeByID(step.From.To)
		to, ok2 := deps.Store.NodeByID(step.To)
		if !ok1 || !ok2 {
			continue
		}
		segments = append(segments, geojson.Segment{From: nodePoint(from), To: nodePoint(to)})
	}

	feature := geojson.NewFeature(geojson.Properties{}, geojson.NewMultiLineString(segments))
	return c.JSON(geojson.NewFeatureCollection([]geojson.Feature{feature}))
}

// pointWire is the JSON wire shape of query.Point.
type pointWire struct {
	Lon    float64 `json:"lon"`
	Lat    float64 `json:"lat"`
	NodeID *int64  `json:"node_id,omitempty"`
}

func (p pointWire) toPoint() query.Point {
	return query.Point{Lon: p.Lon, Lat: p.Lat, NodeID: p.NodeID}
}

// constraintWire is the JSON wire shape of query.Constraint.
type constraintWire struct {
	Kind    query.Kind `json:"kind"`
	Point   pointWire  `json:"point"`
	From    pointWire  `json:"from"`
	To      pointWire  `json:"to"`
	PoiKind string     `json:"poi_kind"`
	Budget  uint64     `json:"budget"`
}

func (w constraintWire) toConstraint() query.Constraint {
	return query.Constraint{
		Kind:    w.Kind,
		Point:   w.Point.toPoint(),
		From:    w.From.toPoint(),
		To:      w.To.toPoint(),
		PoiKind: w.PoiKind,
		Budget:  w.Budget,
	}
}

type multiIcRequest struct {
	Poi         string           `json:"poi"`
	Constraints []constraintWire `json:"constraints"`
}

// IsochroneConjunction handles POST /graph/isochrone with a MultiIc body.
func IsochroneConjunction(c *fiber.Ctx) error {
	deps := graphDeps(c)

	var body multiIcRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	req := query.MultiIc{Poi: body.Poi}
	for _, w := range body.Constraints {
		req.Constraints = append(req.Constraints, w.toConstraint())
	}

	res, err := query.RunMultiIc(deps.Store, deps.Transit, req)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	type nodeOut struct {
		ID   int64   `json:"id"`
		Lat  float64 `json:"lat"`
		Lon  float64 `json:"lon"`
		Name string  `json:"name,omitempty"`
	}
	var nodes []nodeOut
	for _, step := range res.Steps {
		n, ok := deps.Store.NodeByID(step.To)
		if !ok {
			continue
		}
		name, _ := n.Name()
		nodes = append(nodes, nodeOut{ID: n.ID, Lat: n.Lat, Lon: n.Lon, Name: name})
	}

	return c.JSON(fiber.Map{
		"poi":   body.Poi,
		"nodes": nodes,
		"paths": geojson.NewFeatureCollection(pathFeatures(deps.Store, res)),
	})
}

type searchResult struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name,omitempty"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Distance float64 `json:"distance_meters"`
}

// Search handles GET /graph/search?q=<string>&lat=<f>&lon=<f>.
func Search(c *fiber.Ctx) error {
	deps := graphDeps(c)

	q := c.Query("q")
	if q == "" {
		return c.Status(400).JSON(fiber.Map{"error": "missing 'q'"})
	}
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid 'lat'/'lon'"})
	}

	var results []searchResult
	for _, id := range deps.Store.Index.Matching(q) {
		n, ok := deps.Store.NodeByID(id)
		if !ok {
			continue
		}
		name, _ := n.Name()
		results = append(results, searchResult{
			ID: n.ID, Name: name, Lat: n.Lat, Lon: n.Lon,
			Distance: n.DistanceFrom(lat, lon),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > 10 {
		results = results[:10]
	}

	return c.JSON(fiber.Map{"results": results})
}

// Pois handles GET /graph/pois.
func Pois(c *fiber.Ctx) error {
	deps := graphDeps(c)
	return c.JSON(fiber.Map{"categories": deps.Store.Index.PoiTypes()})
}

// PoisByKind handles GET /graph/pois/<kind>?lat=<f>&lon=<f>&dist=<metres>.
func PoisByKind(c *fiber.Ctx) error {
	deps := graphDeps(c)
	kind := c.Params("kind")

	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	dist, err3 := strconv.ParseFloat(c.Query("dist"), 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid 'lat'/'lon'/'dist'"})
	}

	var results []searchResult
	for _, id := range deps.Store.Index.OfPoi(kind) {
		n, ok := deps.Store.NodeByID(id)
		if !ok {
			continue
		}
		d := n.DistanceFrom(lat, lon)
		if d > dist {
			continue
		}
		name, _ := n.Name()
		results = append(results, searchResult{ID: n.ID, Name: name, Lat: n.Lat, Lon: n.Lon, Distance: d})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })

	return c.JSON(fiber.Map{"results": results})
}

// Square handles POST /graph/square?lat=<f>&lon=<f>.
func Square(c *fiber.Ctx) error {
	deps := graphDeps(c)

	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid 'lat'/'lon'"})
	}

	cellID, ok := deps.Store.Index.SquareFor(lat, lon)
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "no cell at this location"})
	}
	sq, ok := deps.Scores[cellID]
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "cell has no precomputed scores"})
	}
	return c.JSON(sq)
}

type scoreRequestWire struct {
	Constraints []constraintWire `json:"constraints"`
}

// Score handles POST /graph/score with a Score body.
func Score(c *fiber.Ctx) error {
	deps := graphDeps(c)

	var body scoreRequestWire
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	req := query.ScoreRequest{}
	for _, w := range body.Constraints {
		req.Constraints = append(req.Constraints, w.toConstraint())
	}

	squares, wanted, err := query.RunScore(deps.Store, deps.Transit, deps.Scores, req)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	type squareScore struct {
		CellID uint64  `json:"cell_id"`
		MinLon float64 `json:"min_lon"`
		MinLat float64 `json:"min_lat"`
		MaxLon float64 `json:"max_lon"`
		MaxLat float64 `json:"max_lat"`
		Score  int     `json:"score"`
	}
	out := make([]squareScore, 0, len(squares))
	for _, sq := range squares {
		out = append(out, squareScore{
			CellID: sq.CellID, MinLon: sq.MinLon, MinLat: sq.MinLat,
			MaxLon: sq.MaxLon, MaxLat: sq.MaxLat,
			Score: scoring.Score(sq, wanted),
		})
	}
	return c.JSON(fiber.Map{"squares": out})
}

type departureOut struct {
	TripID       string `json:"trip_id"`
	RouteID      string `json:"route_id"`
	MinutesUntil int    `json:"minutes_until"`
}

// Departures handles GET /graph/stops/:stopId/departures?count=<n>.
func Departures(c *fiber.Ctx) error {
	deps := graphDeps(c)
	stopID := c.Params("stopId")

	count := 10
	if v := c.Query("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}

	stop, ok := deps.Transit.StopByID(stopID)
	if !ok {
		return c.Status(404).JSON(fiber.Map{"error": "unknown stop"})
	}

	cursors := deps.Transit.NextTrips(stop.ID)
	var out []departureOut
	for _, cur := range cursors {
		st, ok := cur.Stop()
		if !ok {
			continue
		}
		out = append(out, departureOut{
			TripID: cur.Trip.ID, RouteID: cur.Trip.RouteID,
			MinutesUntil: st.DepartureSec / 60,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MinutesUntil < out[j].MinutesUntil })
	if len(out) > count {
		out = out[:count]
	}

	return c.JSON(fiber.Map{"stop_id": stop.ID, "stop_name": stop.Name, "departures": out})
}

// Health handles GET /graph/health.
func Health(c *fiber.Ctx) error {
	deps := graphDeps(c)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	dbStatus := "ok"
	if err := db.HealthCheck(ctx); err != nil {
		dbStatus = "down: " + err.Error()
	}
	redisStatus := "ok"
	if err := cache.HealthCheck(ctx); err != nil {
		redisStatus = "down: " + err.Error()
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"components": fiber.Map{
			"database":    dbStatus,
			"redis":       redisStatus,
			"graph_nodes": len(deps.Store.Nodes),
			"graph_ways":  len(deps.Store.Ways),
			"squares":     len(deps.Scores),
		},
	})
}
