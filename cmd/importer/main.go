// Command importer ingests one GTFS static feed into the transit overlay,
// reporting the load as an ImportLog row in Postgres. It does not touch the
// routing graph itself — that is cmd/build-scores's job.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pathgrid/pathgrid/internal/db"
	"github.com/pathgrid/pathgrid/internal/transit"
)

func main() {
	gtfsPath := flag.String("gtfs", "", "path to GTFS ZIP file (required)")
	source := flag.String("source", "", "short label identifying this feed's source/agency (required)")
	flag.Parse()

	if *gtfsPath == "" || *source == "" {
		fmt.Println("Usage: importer --gtfs=<path.zip> --source=<label>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if _, err := os.Stat(*gtfsPath); os.IsNotExist(err) {
		log.Fatalf("GTFS file not found: %s", *gtfsPath)
	}

	pool, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	logID, err := createImportLog(ctx, pool, *source)
	if err != nil {
		log.Fatalf("failed to create import log: %v", err)
	}

	log.Printf("parsing GTFS feed %s (%s)...", *source, *gtfsPath)
	start := time.Now()

	tm := transit.NewMap()
	if err := tm.Load(*gtfsPath); err != nil {
		updateImportLog(ctx, pool, logID, "failed", 0, 0, err.Error())
		log.Fatalf("import failed: %v", err)
	}

	stops := len(tm.Stops())
	log.Printf("loaded %d stops in %s", stops, time.Since(start))

	if err := updateImportLog(ctx, pool, logID, "success", stops, 0, ""); err != nil {
		log.Fatalf("failed to finalise import log: %v", err)
	}

	log.Println("import completed successfully")
}

func createImportLog(ctx context.Context, pool *pgxpool.Pool, source string) (int64, error) {
	var id int64
	err := pool.QueryRow(ctx, `
		INSERT INTO import_log (source, status, started_at)
		VALUES ($1, 'running', NOW())
		RETURNING id
	`, source).Scan(&id)
	return id, err
}

func updateImportLog(ctx context.Context, pool *pgxpool.Pool, id int64, status string, stops, trips int, errMsg string) error {
	_, err := pool.Exec(ctx, `
		UPDATE import_log
		SET completed_at = NOW(), status = $2, stops_count = $3, trips_count = $4, error_msg = $5
		WHERE id = $1
	`, id, status, stops, trips, errMsg)
	return err
}
