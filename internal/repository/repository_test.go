package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/nycmobility/trips-pipeline-go/internal/database"
	"github.com/nycmobility/trips-pipeline-go/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

func sampleTrip(vendor int64, pickup time.Time) *models.Trip {
	return &models.Trip{
		VendorID:         vendor,
		Pickup:           sql.NullTime{Time: pickup, Valid: true},
		Dropoff:          sql.NullTime{Time: pickup.Add(15 * time.Minute), Valid: true},
		PassengerCount:   1,
		PickupLongitude:  -73.982155,
		PickupLatitude:   40.767937,
		DropoffLongitude: -73.96463,
		DropoffLatitude:  40.765602,
		StoreAndFwdFlag:  "N",
		DurationSec:      sql.NullFloat64{Float64: 900, Valid: true},
	}
}

// TestVendorEnsureIdempotent verifies that ensuring the same vendor name
// twice returns the same surrogate key and inserts a single row.
func TestVendorEnsureIdempotent(t *testing.T) {
	db := testDB(t)
	vendors := NewVendorRepository(db)

	first, err := vendors.Ensure(models.VendorName(1))
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	second, err := vendors.Ensure(models.VendorName(1))
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if first != second {
		t.Errorf("surrogate keys differ: %d vs %d", first, second)
	}

	all, err := vendors.GetAll()
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("vendor rows = %d, want 1", len(all))
	}
	if all[0].Name != "Vendor 1" {
		t.Errorf("vendor name = %q, want \"Vendor 1\"", all[0].Name)
	}
}

// TestTripInsertBatch verifies batch insertion with vendor key mapping and
// the insert-only behavior on repeat.
func TestTripInsertBatch(t *testing.T) {
	db := testDB(t)
	vendors := NewVendorRepository(db)
	trips := NewTripRepository(db)

	v1, err := vendors.Ensure(models.VendorName(1))
	if err != nil {
		t.Fatal(err)
	}
	mapping := map[int64]int64{1: v1}

	pickup := time.Date(2016, 3, 14, 17, 0, 0, 0, time.UTC)
	batch := []*models.Trip{sampleTrip(1, pickup), sampleTrip(1, pickup.Add(time.Hour))}

	n, err := trips.InsertBatch(batch, mapping)
	if err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}

	// Same batch again: trips are insert-only, so the rows duplicate.
	if _, err := trips.InsertBatch(batch, mapping); err != nil {
		t.Fatalf("second InsertBatch: %v", err)
	}
	count, err := trips.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 4 {
		t.Errorf("trip rows = %d, want 4", count)
	}

	// Timestamps persist as ISO-8601 text.
	var ts string
	if err := db.QueryRow("SELECT pickup_datetime FROM Trips LIMIT 1").Scan(&ts); err != nil {
		t.Fatal(err)
	}
	if ts != "2016-03-14T17:00:00Z" {
		t.Errorf("pickup_datetime stored as %q, want RFC3339", ts)
	}
}

// TestTripInsertBatchMissingVendor verifies the whole transaction rolls back
// when a record has no vendor mapping.
func TestTripInsertBatchMissingVendor(t *testing.T) {
	db := testDB(t)
	trips := NewTripRepository(db)

	pickup := time.Date(2016, 3, 14, 17, 0, 0, 0, time.UTC)
	_, err := trips.InsertBatch([]*models.Trip{sampleTrip(7, pickup)}, map[int64]int64{})
	if err == nil {
		t.Fatal("expected error for a missing vendor mapping")
	}

	count, err := trips.Count()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("trip rows = %d after rollback, want 0", count)
	}
}
