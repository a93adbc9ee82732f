// Command api is the HTTP entry point: it loads the OSM+GTFS dataset into
// memory, builds the scoring table, connects to Postgres/Redis, and serves
// the /graph routes behind the auth/rate-limit/analytics middleware chain.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pathgrid/pathgrid/internal/api"
	"github.com/pathgrid/pathgrid/internal/cache"
	"github.com/pathgrid/pathgrid/internal/db"
	"github.com/pathgrid/pathgrid/internal/middleware"
	"github.com/pathgrid/pathgrid/internal/osm"
	"github.com/pathgrid/pathgrid/internal/scoring"
	"github.com/pathgrid/pathgrid/internal/transit"
)

func main() {
	log.Println("Starting pathgrid API server...")

	pbfPath := getEnv("OSM_PBF_PATH", "")
	if pbfPath == "" {
		log.Fatal("OSM_PBF_PATH must be set")
	}
	gtfsPaths := splitNonEmpty(getEnv("GTFS_ZIP_PATHS", ""), ',')

	log.Printf("loading OSM extract from %s...", pbfPath)
	store := osm.NewDb()
	if err := store.LoadPBF(pbfPath); err != nil {
		log.Fatalf("failed to load OSM extract: %v", err)
	}

	tm := transit.NewMap()
	for _, path := range gtfsPaths {
		log.Printf("loading GTFS feed %s...", path)
		if err := tm.Load(path); err != nil {
			log.Fatalf("failed to load GTFS feed %s: %v", path, err)
		}
	}

	log.Println("building adjacency, spatial index, and stitch edges...")
	store.Build()
	store.LinkTransit(tm)

	log.Println("building per-cell score table...")
	squares := scoring.Build(store)
	log.Printf("✓ graph ready: %d nodes, %d ways, %d squares", len(store.Nodes), len(store.Ways), len(squares))

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("✓ database connection established")

	rdb, err := cache.GetClient()
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	defer cache.Close()
	log.Println("✓ Redis connection established")

	deps := &api.GraphDeps{Store: store, Transit: tm, Scores: squares}

	app := fiber.New(fiber.Config{
		AppName:      "pathgrid API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(api.InjectGraph(deps))

	app.Get("/graph/health", api.Health)

	graph := app.Group("/graph")
	graph.Use(middleware.AuthMiddleware(pool))
	graph.Use(middleware.RateLimitMiddleware(rdb))
	graph.Use(middleware.AnalyticsMiddleware(pool))

	graph.Get("/path", api.Path)
	graph.Get("/isochrone", api.Isochrone)
	graph.Post("/isochrone", api.IsochroneConjunction)
	graph.Get("/search", api.Search)
	graph.Get("/pois", api.Pois)
	graph.Get("/pois/:kind", api.PoisByKind)
	graph.Post("/square", api.Square)
	graph.Post("/score", api.Score)
	graph.Get("/stops/:stopId/departures", api.Departures)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error":   "not_found",
			"message": "the requested endpoint does not exist",
			"path":    c.Path(),
		})
	})

	port := getEnv("API_PORT", "8080")
	addr := fmt.Sprintf(":%s", port)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("received shutdown signal...")
		db.Close()
		cache.Close()
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
		log.Println("server shut down gracefully")
	}()

	log.Printf("listening on http://localhost%s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("error [%s %s]: %v", c.Method(), c.Path(), err)
	return c.Status(code).JSON(fiber.Map{
		"error":   "internal_error",
		"message": err.Error(),
	})
}

func splitNonEmpty(s string, sep byte) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			if s[start:i] != "" {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
