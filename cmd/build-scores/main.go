// Command build-scores loads an OSM PBF extract and any GTFS feeds, builds
// the full in-memory routing store and its scoring table, and persists both
// a BuildLog row and the score table to Postgres for optional warm-start
// inspection. The HTTP server (cmd/api) does not read this table back — it
// always rebuilds its own in-memory store at boot, per the build phase's
// single-threaded, in-memory contract.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pathgrid/pathgrid/internal/db"
	"github.com/pathgrid/pathgrid/internal/osm"
	"github.com/pathgrid/pathgrid/internal/scoring"
	"github.com/pathgrid/pathgrid/internal/transit"
)

func main() {
	pbfPath := flag.String("pbf", "", "path to OSM PBF extract (required)")
	gtfsPaths := flag.String("gtfs", "", "comma-separated GTFS ZIP paths (optional)")
	flag.Parse()

	if *pbfPath == "" {
		fmt.Println("Usage: build-scores --pbf=<extract.osm.pbf> [--gtfs=<a.zip,b.zip>]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if _, err := os.Stat(*pbfPath); os.IsNotExist(err) {
		log.Fatalf("PBF file not found: %s", *pbfPath)
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	logID, err := createBuildLog(ctx, pool)
	if err != nil {
		log.Fatalf("failed to create build log: %v", err)
	}

	start := time.Now()

	log.Println("loading OSM extract...")
	store := osm.NewDb()
	if err := store.LoadPBF(*pbfPath); err != nil {
		updateBuildLog(ctx, pool, logID, "failed", 0, 0, 0, err.Error())
		log.Fatalf("failed to load PBF: %v", err)
	}

	tm := transit.NewMap()
	for _, path := range splitNonEmpty(*gtfsPaths, ',') {
		log.Printf("loading GTFS feed %s...", path)
		if err := tm.Load(path); err != nil {
			updateBuildLog(ctx, pool, logID, "failed", 0, 0, 0, err.Error())
			log.Fatalf("failed to load GTFS feed %s: %v", path, err)
		}
	}

	log.Println("building adjacency, spatial index, and stitch edges...")
	store.Build()
	store.LinkTransit(tm)

	log.Println("building per-cell score table...")
	squares := scoring.Build(store)

	log.Println("persisting score table...")
	if err := persistSquares(ctx, pool, squares); err != nil {
		updateBuildLog(ctx, pool, logID, "failed", len(store.Nodes), len(store.Ways), 0, err.Error())
		log.Fatalf("failed to persist score table: %v", err)
	}

	duration := time.Since(start)
	log.Printf("build completed in %s: %d nodes, %d ways, %d squares",
		duration, len(store.Nodes), len(store.Ways), len(squares))

	if err := updateBuildLog(ctx, pool, logID, "success", len(store.Nodes), len(store.Ways), len(squares), ""); err != nil {
		log.Fatalf("failed to finalise build log: %v", err)
	}
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

func createBuildLog(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO build_log (status, started_at)
		VALUES ('running', NOW())
		RETURNING id
	`).Scan(&id)
	return id, err
}

func updateBuildLog(ctx context.Context, pool *pgxpool.Pool, id int64, status string, nodes, ways, squares int, errMsg string) error {
	_, err := pool.Exec(ctx, `
		UPDATE build_log
		SET completed_at = NOW(), status = $2, nodes_count = $3, ways_count = $4, squares_count = $5, error_msg = $6
		WHERE id = $1
	`, id, status, nodes, ways, squares, errMsg)
	return err
}

func persistSquares(ctx context.Context, pool *pgxpool.Pool, squares map[uint64]*scoring.Square) error {
	if len(squares) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, sq := range squares {
		scoresJSON, err := json.Marshal(sq.Scores)
		if err != nil {
			return fmt.Errorf("failed to marshal scores for cell %d: %w", sq.CellID, err)
		}
		batch.Queue(`
			INSERT INTO score_square (cell_id, min_lon, min_lat, max_lon, max_lat, scores)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (cell_id) DO UPDATE
			SET min_lon = EXCLUDED.min_lon, min_lat = EXCLUDED.min_lat,
			    max_lon = EXCLUDED.max_lon, max_lat = EXCLUDED.max_lat,
			    scores = EXCLUDED.scores
		`, sq.CellID, sq.MinLon, sq.MinLat, sq.MaxLon, sq.MaxLat, scoresJSON)

		if batch.Len() >= 1000 {
			if err := execBatch(ctx, pool, batch); err != nil {
				return err
			}
			batch = &pgx.Batch{}
		}
	}
	return execBatch(ctx, pool, batch)
}

func execBatch(ctx context.Context, pool *pgxpool.Pool, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert score_square batch entry %d: %w", i, err)
		}
	}
	return nil
}
