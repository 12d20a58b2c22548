package main

import (
	"flag"
	"log"

	"github.com/nycmobility/trips-pipeline-go/internal/config"
	"github.com/nycmobility/trips-pipeline-go/internal/pipeline"
)

func main() {
	cfg := config.Load()

	zipPath := flag.String("zip", cfg.ZipPath, "path to the raw trip archive")
	outputDir := flag.String("out", cfg.OutputDir, "directory for cleaned data and transparency logs")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path (empty to skip persistence)")
	flag.Parse()

	cfg.ZipPath = *zipPath
	cfg.OutputDir = *outputDir
	cfg.DBPath = *dbPath

	summary, err := pipeline.New(cfg).Run()
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	log.Printf("Run %s: %d/%d rows retained (%.2f%%), %d outliers flagged, %d trips persisted",
		summary.RunID, summary.CleanedRows, summary.OriginalRows,
		summary.Retention, summary.OutlierCount, summary.InsertedTrips)
}
