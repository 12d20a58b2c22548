package pipeline

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/nycmobility/trips-pipeline-go/internal/models"
)

// LoadArchive reads the raw trip dataset from a zip archive containing a CSV
// file. The first .csv entry wins when the archive holds several. Structural
// problems (unreadable archive, no CSV entry, missing required columns) are
// fatal and abort the run.
func LoadArchive(zipPath string, steps *StepLog) (*models.Dataset, error) {
	steps.Step("Loading raw data from zip file...")

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		steps.Step("Error loading data: %v", err)
		return nil, fmt.Errorf("failed to open archive %s: %w", zipPath, err)
	}
	defer zr.Close()

	var entry *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			entry = f
			break
		}
	}
	if entry == nil {
		steps.Step("Error loading data: no CSV file found in zip archive")
		return nil, fmt.Errorf("no CSV file found in archive %s", zipPath)
	}

	rc, err := entry.Open()
	if err != nil {
		steps.Step("Error loading data: %v", err)
		return nil, fmt.Errorf("failed to open %s in archive: %w", entry.Name, err)
	}
	defer rc.Close()

	ds, err := readCSV(rc)
	if err != nil {
		steps.Step("Error loading data: %v", err)
		return nil, err
	}

	steps.Step("Loaded dataset: %d rows, %d columns", ds.Len(), len(ds.Columns))
	return ds, nil
}

// readCSV parses the tabular file into a Dataset, keeping each row's raw
// fields for later verbatim discard logging.
func readCSV(r io.Reader) (*models.Dataset, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		h = strings.ReplaceAll(h, `"`, "")
		columns[i] = h
	}

	ds := &models.Dataset{Columns: columns}
	for _, required := range models.RequiredColumns {
		if ds.ColumnIndex(required) < 0 {
			return nil, fmt.Errorf("required column %q missing from dataset", required)
		}
	}
	ds.HasFare = ds.ColumnIndex(models.ColFareAmount) >= 0

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		raw := make([]string, len(row))
		for i, v := range row {
			raw[i] = strings.TrimSpace(v)
		}
		ds.Trips = append(ds.Trips, &models.Trip{Raw: raw})
	}

	return ds, nil
}
