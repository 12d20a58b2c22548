package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/nycmobility/trips-pipeline-go/internal/database"
	"github.com/nycmobility/trips-pipeline-go/internal/models"
)

// TripRepository handles database operations for trips
type TripRepository struct {
	db *sql.DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{db: db}
}

// InsertBatch inserts cleaned trip records in a single transaction, mapping
// each record's raw vendor id to the surrogate key in vendorIDs. Trip rows
// are insert-only: re-running the pipeline against the same store appends
// them again. Returns the number of rows inserted.
func (r *TripRepository) InsertBatch(trips []*models.Trip, vendorIDs map[int64]int64) (int, error) {
	if len(trips) == 0 {
		return 0, nil
	}

	inserted := 0
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO Trips
			(vendor_id, pickup_datetime, dropoff_datetime, passenger_count,
			 pickup_longitude, pickup_latitude, dropoff_longitude, dropoff_latitude,
			 store_and_fwd_flag, trip_duration_sec)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare trip insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range trips {
			vendorID, ok := vendorIDs[t.VendorID]
			if !ok {
				return fmt.Errorf("no vendor mapping for raw vendor id %d", t.VendorID)
			}

			var duration sql.NullInt64
			if t.DurationSec.Valid {
				duration = sql.NullInt64{Int64: int64(t.DurationSec.Float64), Valid: true}
			}

			var flag sql.NullString
			if t.StoreAndFwdFlag != "" {
				flag = sql.NullString{String: t.StoreAndFwdFlag, Valid: true}
			}

			_, err := stmt.Exec(
				vendorID,
				t.Pickup.Time.UTC().Format(time.RFC3339),
				t.Dropoff.Time.UTC().Format(time.RFC3339),
				t.PassengerCount,
				t.PickupLongitude,
				t.PickupLatitude,
				t.DropoffLongitude,
				t.DropoffLatitude,
				flag,
				duration,
			)
			if err != nil {
				return fmt.Errorf("failed to insert trip: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("[TripRepository] Inserted %d trip records", inserted)
	return inserted, nil
}

// Count returns the number of rows in the Trips table.
func (r *TripRepository) Count() (int64, error) {
	var n int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM Trips").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return n, nil
}
