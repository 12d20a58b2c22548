package pipeline

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/nycmobility/trips-pipeline-go/internal/config"
	"github.com/nycmobility/trips-pipeline-go/internal/database"
	"github.com/nycmobility/trips-pipeline-go/internal/models"
	"github.com/nycmobility/trips-pipeline-go/internal/repository"
)

// Summary aggregates the result of one pipeline run.
type Summary struct {
	RunID         string
	OriginalRows  int
	OriginalCols  int
	CleanedRows   int
	RemovedRows   int
	OutlierCount  int
	Retention     float64 // cleaned / original rows, percent
	InsertedTrips int
}

// Pipeline sequences the cleaning stages over a single in-memory dataset.
// All state for a run (dataset, discard log, outlier log, step log) is
// threaded explicitly through the stage functions; the pipeline itself holds
// only configuration.
type Pipeline struct {
	cfg *config.Config
}

// New creates a pipeline for the given configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run executes one full batch run: load, clean, normalize, derive, detect
// outliers, save artifacts, optionally persist to the store, and summarize.
// A load or structural failure aborts the run and is returned; save and
// persistence failures are logged and the summary is still produced from
// whatever was accomplished.
func (p *Pipeline) Run() (*Summary, error) {
	runID := uuid.NewString()
	steps := NewStepLog()
	steps.Step("Starting pipeline run %s", runID)

	ds, err := LoadArchive(p.cfg.ZipPath, steps)
	if err != nil {
		return nil, fmt.Errorf("pipeline run %s failed: %w", runID, err)
	}
	originalRows := ds.Len()
	originalCols := len(ds.Columns)

	removed := CleanRecords(ds, steps)
	NormalizeRecords(ds, steps)
	DeriveFeatures(ds, steps)
	outliers := DetectOutliers(ds, steps)

	NewWriter(p.cfg.OutputDir).WriteArtifacts(ds, removed, outliers, steps)

	inserted := 0
	if p.cfg.DBPath != "" {
		inserted, err = p.persist(ds, steps)
		if err != nil {
			steps.Step("Error inserting to database: %v", err)
		}
	}

	summary := &Summary{
		RunID:         runID,
		OriginalRows:  originalRows,
		OriginalCols:  originalCols,
		CleanedRows:   ds.Len(),
		RemovedRows:   len(removed),
		OutlierCount:  outliers.Len(),
		InsertedTrips: inserted,
	}
	if originalRows > 0 {
		summary.Retention = float64(ds.Len()) / float64(originalRows) * 100
	}

	steps.Step("Processing Summary:")
	steps.Step("Original dataset: %d rows, %d columns", summary.OriginalRows, summary.OriginalCols)
	steps.Step("Cleaned dataset: %d rows, %d columns", summary.CleanedRows, originalCols+len(derivedColumns(ds)))
	steps.Step("Data retention: %.2f%%", summary.Retention)
	steps.Step("Speed outliers detected: %d", summary.OutlierCount)

	log.Printf("[Pipeline] Run %s completed successfully", runID)
	return summary, nil
}

// persist inserts the cleaned dataset into the SQLite store. Vendors are
// upserted idempotently by display name; trip rows are insert-only.
func (p *Pipeline) persist(ds *models.Dataset, steps *StepLog) (int, error) {
	steps.Step("Inserting cleaned data into database...")

	db, err := database.Open(p.cfg.DBPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := database.InitSchema(db); err != nil {
		return 0, err
	}

	vendors := repository.NewVendorRepository(db)
	vendorIDs := make(map[int64]int64)
	for _, t := range ds.Trips {
		if _, ok := vendorIDs[t.VendorID]; ok {
			continue
		}
		id, err := vendors.Ensure(models.VendorName(t.VendorID))
		if err != nil {
			return 0, err
		}
		vendorIDs[t.VendorID] = id
	}

	trips := repository.NewTripRepository(db)
	inserted, err := trips.InsertBatch(ds.Trips, vendorIDs)
	if err != nil {
		return 0, err
	}

	steps.Step("Inserted %d trip records into database", inserted)
	return inserted, nil
}
