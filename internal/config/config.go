package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds pipeline configuration
type Config struct {
	ZipPath   string // raw archive with the trip CSV
	OutputDir string // cleaned dataset + transparency artifacts
	DBPath    string // SQLite target; empty disables persistence
}

// Load reads configuration from the environment, falling back to the
// project's default data layout. A .env file is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	zipPath := os.Getenv("TRIPS_ZIP_PATH")
	if zipPath == "" {
		zipPath = "./data/raw/train.zip"
	}

	outputDir := os.Getenv("TRIPS_OUTPUT_DIR")
	if outputDir == "" {
		outputDir = "./data/processed"
	}

	dbPath := os.Getenv("TRIPS_DB_PATH")
	if dbPath == "" {
		dbPath = "./nyc_train.db"
	}

	return &Config{
		ZipPath:   zipPath,
		OutputDir: outputDir,
		DBPath:    dbPath,
	}
}
