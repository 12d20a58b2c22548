package pipeline

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nycmobility/trips-pipeline-go/internal/models"
	"github.com/nycmobility/trips-pipeline-go/internal/spatial"
)

// Timestamp layouts accepted in the raw data. Values without a zone are
// treated as UTC.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// parseTimestamp coerces a raw timestamp to a UTC instant, returning an
// invalid NullTime when the value cannot be parsed. It never fails.
func parseTimestamp(raw string) sql.NullTime {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sql.NullTime{}
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return sql.NullTime{Time: ts.UTC(), Valid: true}
		}
	}
	return sql.NullTime{}
}

// parseCoordinate reads a coordinate field; unparsable values fall back to 0,
// the sentinel the validity check below removes.
func parseCoordinate(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

// CleanRecords parses the base fields of every row, removes invalid rows, and
// drops rows that are duplicates after the coercion (two rows spelling the
// same coerced values differently count as one). Removed rows are captured with their original raw
// values before removal; duplicates are dropped without logging. Returns the
// discard log.
//
// A row is invalid when its pickup or dropoff timestamp failed to parse, or
// when any of its four coordinates equals exactly 0 (the dataset's
// missing-location sentinel; no legitimate trip in this domain touches the
// zero meridian/equator intersection), or when a coordinate pair falls
// outside the representable latitude/longitude ranges.
func CleanRecords(ds *models.Dataset, steps *StepLog) []*models.Trip {
	steps.Step("Handling missing values and invalid records...")

	initialRows := ds.Len()

	pickupIdx := ds.ColumnIndex(models.ColPickupDatetime)
	dropoffIdx := ds.ColumnIndex(models.ColDropoffDatetime)
	vendorIdx := ds.ColumnIndex(models.ColVendorID)
	passengerIdx := ds.ColumnIndex(models.ColPassengerCount)
	puLonIdx := ds.ColumnIndex(models.ColPickupLongitude)
	puLatIdx := ds.ColumnIndex(models.ColPickupLatitude)
	doLonIdx := ds.ColumnIndex(models.ColDropoffLongitude)
	doLatIdx := ds.ColumnIndex(models.ColDropoffLatitude)
	flagIdx := ds.ColumnIndex(models.ColStoreAndFwdFlag)

	for _, t := range ds.Trips {
		t.Pickup = parseTimestamp(t.Raw[pickupIdx])
		t.Dropoff = parseTimestamp(t.Raw[dropoffIdx])

		if id, err := strconv.ParseInt(strings.TrimSpace(t.Raw[vendorIdx]), 10, 64); err == nil {
			t.VendorID = id
		}

		// Missing passenger counts default to 1; counts below 1 are
		// clamped up to 1.
		count, err := strconv.ParseInt(strings.TrimSpace(t.Raw[passengerIdx]), 10, 64)
		if err != nil || count < 1 {
			count = 1
		}
		t.PassengerCount = count

		t.PickupLongitude = parseCoordinate(t.Raw[puLonIdx])
		t.PickupLatitude = parseCoordinate(t.Raw[puLatIdx])
		t.DropoffLongitude = parseCoordinate(t.Raw[doLonIdx])
		t.DropoffLatitude = parseCoordinate(t.Raw[doLatIdx])

		if flagIdx >= 0 {
			t.StoreAndFwdFlag = strings.TrimSpace(t.Raw[flagIdx])
		}
	}

	var removed []*models.Trip
	kept := ds.Trips[:0]
	for _, t := range ds.Trips {
		if isInvalid(t) {
			removed = append(removed, t)
			continue
		}
		kept = append(kept, t)
	}
	ds.Trips = kept

	// Duplicates are detected on the coerced values, so rows differing only
	// in spelling (timestamp layout, a missing passenger count, trailing
	// zeros on a coordinate) still collapse. Dropped without being logged;
	// the first occurrence wins.
	seen := make(map[string]struct{}, ds.Len())
	deduped := ds.Trips[:0]
	for _, t := range ds.Trips {
		key := dedupKey(ds, t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, t)
	}
	ds.Trips = deduped

	steps.Step("Removed %d invalid/duplicate records", initialRows-ds.Len())
	return removed
}

// dedupKey serializes a trip's coerced base fields. Fare values are compared
// numerically when they parse; columns outside the base set contribute their
// raw text.
func dedupKey(ds *models.Dataset, t *models.Trip) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\x1f%d\x1f%d\x1f%d", t.VendorID, t.Pickup.Time.UnixNano(), t.Dropoff.Time.UnixNano(), t.PassengerCount)
	fmt.Fprintf(&b, "\x1f%g\x1f%g\x1f%g\x1f%g", t.PickupLongitude, t.PickupLatitude, t.DropoffLongitude, t.DropoffLatitude)
	b.WriteByte(0x1f)
	b.WriteString(t.StoreAndFwdFlag)
	for i, col := range ds.Columns {
		switch col {
		case models.ColVendorID, models.ColPickupDatetime, models.ColDropoffDatetime,
			models.ColPassengerCount, models.ColPickupLongitude, models.ColPickupLatitude,
			models.ColDropoffLongitude, models.ColDropoffLatitude, models.ColStoreAndFwdFlag:
		case models.ColFareAmount:
			if fare := parseFare(t.Raw[i]); fare.Valid {
				fmt.Fprintf(&b, "\x1f%g", fare.Float64)
			} else {
				b.WriteByte(0x1f)
				b.WriteString(t.Raw[i])
			}
		default:
			b.WriteByte(0x1f)
			b.WriteString(t.Raw[i])
		}
	}
	return b.String()
}

func isInvalid(t *models.Trip) bool {
	return !t.Pickup.Valid ||
		!t.Dropoff.Valid ||
		t.PickupLatitude == 0 ||
		t.PickupLongitude == 0 ||
		t.DropoffLatitude == 0 ||
		t.DropoffLongitude == 0 ||
		!spatial.ValidLatLng(t.PickupLatitude, t.PickupLongitude) ||
		!spatial.ValidLatLng(t.DropoffLatitude, t.DropoffLongitude)
}
