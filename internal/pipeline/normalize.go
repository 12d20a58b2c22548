package pipeline

import (
	"database/sql"
	"math"
	"strconv"
	"strings"

	"github.com/nycmobility/trips-pipeline-go/internal/models"
)

// roundCoord rounds a coordinate to 6 decimal places (about 0.1 m of
// precision, well below GPS noise).
func roundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// NormalizeRecords canonicalizes types and precision on the cleaned dataset:
// timestamps become UTC instants, coordinates are rounded to 6 decimals, and
// the fare column, when present, is coerced to numeric with unparsable values
// becoming absent. No rows are added or removed, and running it twice on
// already-normalized data changes nothing.
func NormalizeRecords(ds *models.Dataset, steps *StepLog) {
	steps.Step("Normalizing and formatting data...")

	fareIdx := ds.ColumnIndex(models.ColFareAmount)

	for _, t := range ds.Trips {
		if t.Pickup.Valid {
			t.Pickup.Time = t.Pickup.Time.UTC()
		}
		if t.Dropoff.Valid {
			t.Dropoff.Time = t.Dropoff.Time.UTC()
		}

		t.PickupLongitude = roundCoord(t.PickupLongitude)
		t.PickupLatitude = roundCoord(t.PickupLatitude)
		t.DropoffLongitude = roundCoord(t.DropoffLongitude)
		t.DropoffLatitude = roundCoord(t.DropoffLatitude)

		if ds.HasFare {
			t.Fare = parseFare(t.Raw[fareIdx])
		}
	}

	steps.Step("Data normalization completed")
}

// parseFare coerces a raw fare value to numeric; unparsable values become
// absent rather than an error.
func parseFare(raw string) sql.NullFloat64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullFloat64{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
