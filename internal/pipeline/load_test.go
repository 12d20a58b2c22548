package pipeline

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeZip builds a zip archive in dir with the given entries.
func writeZip(t *testing.T, dir string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "train.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

const sampleCSV = `vendor_id,pickup_datetime,dropoff_datetime,passenger_count,pickup_longitude,pickup_latitude,dropoff_longitude,dropoff_latitude,store_and_fwd_flag
1,2016-03-14 17:24:55,2016-03-14 17:32:30,1,-73.982155,40.767937,-73.964630,40.765602,N
2,2016-06-12 00:43:35,2016-06-12 00:54:38,1,-73.980415,40.738564,-73.999481,40.731152,N
`

// TestLoadArchive verifies the happy path: header parsed and cleaned, rows
// loaded raw, optional columns detected.
func TestLoadArchive(t *testing.T) {
	path := writeZip(t, t.TempDir(), map[string]string{"train.csv": sampleCSV})

	ds, err := LoadArchive(path, NewStepLog())
	if err != nil {
		t.Fatalf("LoadArchive: %v", err)
	}

	if ds.Len() != 2 {
		t.Errorf("rows = %d, want 2", ds.Len())
	}
	if len(ds.Columns) != 9 {
		t.Errorf("columns = %d, want 9", len(ds.Columns))
	}
	if ds.HasFare {
		t.Error("HasFare = true for a dataset without fare_amount")
	}
	if got := ds.Trips[0].Raw[0]; got != "1" {
		t.Errorf("first raw vendor field = %q, want \"1\"", got)
	}
}

// TestLoadArchiveDetectsFare verifies the optional fare column is detected.
func TestLoadArchiveDetectsFare(t *testing.T) {
	csv := strings.ReplaceAll(sampleCSV, "store_and_fwd_flag", "store_and_fwd_flag,fare_amount")
	csv = strings.ReplaceAll(csv, ",N\n", ",N,11.5\n")
	path := writeZip(t, t.TempDir(), map[string]string{"train.csv": csv})

	ds, err := LoadArchive(path, NewStepLog())
	if err != nil {
		t.Fatalf("LoadArchive: %v", err)
	}
	if !ds.HasFare {
		t.Error("HasFare = false, want true")
	}
}

// TestLoadArchiveFirstCSVWins verifies that with several CSV entries the
// first one in the archive is used.
func TestLoadArchiveFirstCSVWins(t *testing.T) {
	// Map iteration order is random, so build the archive deterministically.
	path := filepath.Join(t.TempDir(), "train.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	first, _ := zw.Create("a_first.csv")
	first.Write([]byte(sampleCSV))
	second, _ := zw.Create("b_second.csv")
	second.Write([]byte(sampleCSV + "3,2016-06-12 01:00:00,2016-06-12 01:10:00,1,-73.98,40.73,-73.99,40.73,N\n"))
	zw.Close()
	f.Close()

	ds, err := LoadArchive(path, NewStepLog())
	if err != nil {
		t.Fatalf("LoadArchive: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("rows = %d, want 2 (from the first CSV entry)", ds.Len())
	}
}

// TestLoadArchiveFailures verifies the fatal structural errors: unreadable
// archive, no CSV entry, missing required columns.
func TestLoadArchiveFailures(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadArchive(filepath.Join(dir, "missing.zip"), NewStepLog()); err == nil {
		t.Error("expected error for a missing archive")
	}

	noCSV := writeZip(t, dir, map[string]string{"readme.txt": "not tabular"})
	if _, err := LoadArchive(noCSV, NewStepLog()); err == nil {
		t.Error("expected error for an archive without a CSV entry")
	}

	badHeader := writeZip(t, t.TempDir(), map[string]string{
		"train.csv": "vendor_id,pickup_datetime\n1,2016-03-14 17:24:55\n",
	})
	if _, err := LoadArchive(badHeader, NewStepLog()); err == nil {
		t.Error("expected error for missing required columns")
	}
}
