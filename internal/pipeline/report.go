package pipeline

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nycmobility/trips-pipeline-go/internal/models"
)

// Output artifact names under the configured output directory.
const (
	CleanedFileName  = "clean_train.csv"
	RemovedFileName  = "removed_invalid_records.csv"
	OutliersFileName = "speed_outliers.csv"
	LogFileName      = "processing_log.txt"
)

// Writer persists the cleaned dataset and the transparency artifacts. Each
// artifact write is an independent best-effort operation: a failure is logged
// to the step log and the remaining writes still run.
type Writer struct {
	OutputDir string
}

// NewWriter creates a writer rooted at outputDir.
func NewWriter(outputDir string) *Writer {
	return &Writer{OutputDir: outputDir}
}

// WriteArtifacts writes the cleaned dataset, the removed-records and outlier
// logs (each only when non-empty), and the plain-text processing log.
func (w *Writer) WriteArtifacts(ds *models.Dataset, removed []*models.Trip, outliers *OutlierList, steps *StepLog) {
	steps.Step("Saving cleaned data and transparency logs...")

	if err := os.MkdirAll(w.OutputDir, 0755); err != nil {
		steps.Step("Error creating output directory: %v", err)
		return
	}

	if err := w.writeCleaned(ds); err != nil {
		steps.Step("Error saving cleaned data: %v", err)
	} else {
		steps.Step("Saved cleaned data to: %s", filepath.Join(w.OutputDir, CleanedFileName))
	}

	if len(removed) > 0 {
		if err := w.writeRemoved(ds, removed); err != nil {
			steps.Step("Error saving removed records: %v", err)
		} else {
			steps.Step("Saved removed records to: %s", filepath.Join(w.OutputDir, RemovedFileName))
		}
	}

	if outliers != nil && outliers.Len() > 0 {
		if err := w.writeOutliers(ds, outliers); err != nil {
			steps.Step("Error saving speed outliers: %v", err)
		} else {
			steps.Step("Saved speed outliers to: %s", filepath.Join(w.OutputDir, OutliersFileName))
		}
	}

	if err := w.writeLog(steps); err != nil {
		steps.Step("Error saving processing log: %v", err)
	} else {
		steps.Step("Saved processing log to: %s", filepath.Join(w.OutputDir, LogFileName))
	}
}

// derivedColumns returns the derived column names appended to the output,
// matching the order they were created in.
func derivedColumns(ds *models.Dataset) []string {
	cols := []string{
		models.ColTripDurationSec,
		models.ColTripDistanceKm,
		models.ColTripSpeedKmh,
		models.ColIdleTimeSec,
	}
	if ds.HasFare {
		cols = append(cols, models.ColFarePerKm)
	}
	return append(cols, models.ColTripEfficiency)
}

func (w *Writer) writeCleaned(ds *models.Dataset) error {
	header := append(append([]string{}, ds.Columns...), derivedColumns(ds)...)

	rows := make([][]string, 0, ds.Len())
	for _, t := range ds.Trips {
		rows = append(rows, formatTrip(ds, t))
	}
	return writeCSV(filepath.Join(w.OutputDir, CleanedFileName), header, rows)
}

func (w *Writer) writeRemoved(ds *models.Dataset, removed []*models.Trip) error {
	rows := make([][]string, 0, len(removed))
	for _, t := range removed {
		rows = append(rows, t.Raw)
	}
	return writeCSV(filepath.Join(w.OutputDir, RemovedFileName), ds.Columns, rows)
}

func (w *Writer) writeOutliers(ds *models.Dataset, outliers *OutlierList) error {
	header := append(append([]string{}, ds.Columns...), derivedColumns(ds)...)

	rows := make([][]string, 0, outliers.Len())
	for _, t := range outliers.Records() {
		snapshot := t
		rows = append(rows, formatTrip(ds, &snapshot))
	}
	return writeCSV(filepath.Join(w.OutputDir, OutliersFileName), header, rows)
}

func (w *Writer) writeLog(steps *StepLog) error {
	f, err := os.Create(filepath.Join(w.OutputDir, LogFileName))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	for _, line := range steps.Entries() {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("failed to write log line: %w", err)
		}
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatTrip materializes a record as a flat CSV row: the original columns
// with their normalized values (unknown extra columns pass through raw),
// followed by the derived columns. Absent values render as empty fields.
func formatTrip(ds *models.Dataset, t *models.Trip) []string {
	row := make([]string, 0, len(ds.Columns)+6)
	for i, col := range ds.Columns {
		switch col {
		case models.ColVendorID:
			row = append(row, strconv.FormatInt(t.VendorID, 10))
		case models.ColPickupDatetime:
			row = append(row, formatTime(t.Pickup.Time))
		case models.ColDropoffDatetime:
			row = append(row, formatTime(t.Dropoff.Time))
		case models.ColPassengerCount:
			row = append(row, strconv.FormatInt(t.PassengerCount, 10))
		case models.ColPickupLongitude:
			row = append(row, formatFloat(t.PickupLongitude))
		case models.ColPickupLatitude:
			row = append(row, formatFloat(t.PickupLatitude))
		case models.ColDropoffLongitude:
			row = append(row, formatFloat(t.DropoffLongitude))
		case models.ColDropoffLatitude:
			row = append(row, formatFloat(t.DropoffLatitude))
		case models.ColStoreAndFwdFlag:
			row = append(row, t.StoreAndFwdFlag)
		case models.ColFareAmount:
			row = append(row, formatNullFloat(t.Fare))
		default:
			row = append(row, t.Raw[i])
		}
	}

	row = append(row,
		formatNullFloat(t.DurationSec),
		formatFloat(t.DistanceKm),
		formatNullFloat(t.SpeedKmh),
		formatNullFloat(t.IdleSec),
	)
	if ds.HasFare {
		row = append(row, formatNullFloat(t.FarePerKm))
	}
	return append(row, formatNullFloat(t.Efficiency))
}

func formatTime(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNullFloat(v sql.NullFloat64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}
