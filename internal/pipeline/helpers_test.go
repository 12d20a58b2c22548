package pipeline

import (
	"testing"
	"time"

	"github.com/nycmobility/trips-pipeline-go/internal/models"
)

var baseColumns = []string{
	models.ColVendorID,
	models.ColPickupDatetime,
	models.ColDropoffDatetime,
	models.ColPassengerCount,
	models.ColPickupLongitude,
	models.ColPickupLatitude,
	models.ColDropoffLongitude,
	models.ColDropoffLatitude,
}

var fareColumns = append(append([]string{}, baseColumns...), models.ColFareAmount)

// t0 is an arbitrary reference instant used across fixtures.
var t0 = time.Date(2016, 3, 14, 17, 0, 0, 0, time.UTC)

func ts(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// rawRow builds a raw CSV row for the base column set.
func rawRow(vendor, pickup, dropoff, passengers, puLon, puLat, doLon, doLat string) []string {
	return []string{vendor, pickup, dropoff, passengers, puLon, puLat, doLon, doLat}
}

// newDataset builds a dataset in its just-loaded state: raw rows only, typed
// fields not yet parsed.
func newDataset(t *testing.T, columns []string, rows [][]string) *models.Dataset {
	t.Helper()
	ds := &models.Dataset{Columns: columns}
	ds.HasFare = ds.ColumnIndex(models.ColFareAmount) >= 0
	for _, row := range rows {
		if len(row) != len(columns) {
			t.Fatalf("fixture row has %d fields, want %d", len(row), len(columns))
		}
		ds.Trips = append(ds.Trips, &models.Trip{Raw: row})
	}
	return ds
}

// cleanedDataset runs the load-adjacent stages (clean + normalize) over the
// fixture so derivation tests start from a realistic state.
func cleanedDataset(t *testing.T, columns []string, rows [][]string) *models.Dataset {
	t.Helper()
	ds := newDataset(t, columns, rows)
	steps := NewStepLog()
	CleanRecords(ds, steps)
	NormalizeRecords(ds, steps)
	return ds
}
