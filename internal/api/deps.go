// Package api is the HTTP surface (C8): Fiber handlers translating the
// query pipeline and scoring engine into the JSON/GeoJSON routes described
// in the external interfaces.
package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pathgrid/pathgrid/internal/osm"
	"github.com/pathgrid/pathgrid/internal/scoring"
	"github.com/pathgrid/pathgrid/internal/transit"
)

// GraphDeps is the read-only, build-once routing state every /graph handler
// runs against. It is injected into every request's locals by InjectGraph
// and never mutated after the server starts serving.
type GraphDeps struct {
	Store   *osm.Db
	Transit *transit.Map
	Scores  map[uint64]*scoring.Square
}

// InjectGraph makes deps available to handlers via c.Locals, matching the
// teacher's dependency-injection-via-locals convention for the db/redis
// pool handles.
func InjectGraph(deps *GraphDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("graph", deps)
		return c.Next()
	}
}

func graphDeps(c *fiber.Ctx) *GraphDeps {
	return c.Locals("graph").(*GraphDeps)
}
