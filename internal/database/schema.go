package database

import (
	"database/sql"
	"fmt"
)

// Schema for the downstream store: vendors with auto-assigned surrogate keys
// and insert-only trip rows. Timestamps are stored as ISO-8601 text.
const schema = `
CREATE TABLE IF NOT EXISTS Vendors (
	vendor_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	vendor_name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS Trips (
	trip_id            INTEGER PRIMARY KEY AUTOINCREMENT,
	vendor_id          INTEGER NOT NULL REFERENCES Vendors(vendor_id),
	pickup_datetime    TEXT NOT NULL,
	dropoff_datetime   TEXT NOT NULL,
	passenger_count    INTEGER NOT NULL,
	pickup_longitude   REAL NOT NULL,
	pickup_latitude    REAL NOT NULL,
	dropoff_longitude  REAL NOT NULL,
	dropoff_latitude   REAL NOT NULL,
	store_and_fwd_flag TEXT,
	trip_duration_sec  INTEGER
);

CREATE INDEX IF NOT EXISTS idx_trips_vendor ON Trips(vendor_id);
CREATE INDEX IF NOT EXISTS idx_trips_pickup ON Trips(pickup_datetime);
`

// InitSchema creates the Vendors and Trips tables if they do not exist.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
