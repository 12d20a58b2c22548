package models

import (
	"database/sql"
)

// Base column names of the raw trip dataset.
const (
	ColVendorID         = "vendor_id"
	ColPickupDatetime   = "pickup_datetime"
	ColDropoffDatetime  = "dropoff_datetime"
	ColPassengerCount   = "passenger_count"
	ColPickupLongitude  = "pickup_longitude"
	ColPickupLatitude   = "pickup_latitude"
	ColDropoffLongitude = "dropoff_longitude"
	ColDropoffLatitude  = "dropoff_latitude"
	ColStoreAndFwdFlag  = "store_and_fwd_flag"
	ColFareAmount       = "fare_amount"
)

// Derived column names appended to the cleaned output.
const (
	ColTripDurationSec = "trip_duration_sec"
	ColTripDistanceKm  = "trip_distance_km"
	ColTripSpeedKmh    = "trip_speed_kmh"
	ColIdleTimeSec     = "idle_time_sec"
	ColFarePerKm       = "fare_per_km"
	ColTripEfficiency  = "trip_efficiency"
)

// RequiredColumns must all be present in the raw CSV header. A missing one is
// a structural error that aborts the run.
var RequiredColumns = []string{
	ColVendorID,
	ColPickupDatetime,
	ColDropoffDatetime,
	ColPassengerCount,
	ColPickupLongitude,
	ColPickupLatitude,
	ColDropoffLongitude,
	ColDropoffLatitude,
}

// Trip represents one observed trip record as it moves through the pipeline.
// Derived fields use sql.Null* so that "absent" (mathematically undefined for
// this record) stays distinct from zero.
type Trip struct {
	VendorID         int64
	Pickup           sql.NullTime // UTC; invalid when the raw value failed to parse
	Dropoff          sql.NullTime
	PassengerCount   int64
	PickupLongitude  float64
	PickupLatitude   float64
	DropoffLongitude float64
	DropoffLatitude  float64
	StoreAndFwdFlag  string
	Fare             sql.NullFloat64 // only meaningful when Dataset.HasFare

	// Derived during feature derivation.
	DurationSec sql.NullFloat64
	DistanceKm  float64
	SpeedKmh    sql.NullFloat64
	IdleSec     sql.NullFloat64
	FarePerKm   sql.NullFloat64
	Efficiency  sql.NullFloat64

	// Raw holds the original CSV fields aligned with Dataset.Columns. It is
	// kept so removed rows can be logged verbatim with their pre-clean values
	// and so exact-duplicate detection compares every original field.
	Raw []string
}

// Snapshot returns a value copy of the trip for the outlier log. The copy
// shares the immutable Raw slice.
func (t *Trip) Snapshot() Trip {
	return *t
}

// Dataset is the ordered in-memory tabular dataset mutated stage by stage.
type Dataset struct {
	Columns []string // original CSV header, cleaned
	Trips   []*Trip
	HasFare bool
}

// ColumnIndex returns the position of a column in the raw header, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the current number of records.
func (d *Dataset) Len() int {
	return len(d.Trips)
}
