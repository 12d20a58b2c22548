package pipeline

import (
	"database/sql"
	"math"
	"sort"
	"time"

	"github.com/nycmobility/trips-pipeline-go/internal/models"
	"github.com/nycmobility/trips-pipeline-go/internal/spatial"
)

// DeriveFeatures computes the derived metrics for every record: trip
// duration, great-circle distance, speed, per-vendor idle time, fare per km,
// and the normalized efficiency score. Per-record arithmetic never fails;
// undefined quantities are left absent and the record continues through the
// pipeline.
//
// Idle time is order-sensitive: the dataset is stably sorted by (vendor,
// pickup time) exactly once, then scanned sequentially while a last-dropoff
// map per vendor is threaded through the pass. Stages after this one must not
// reorder records.
func DeriveFeatures(ds *models.Dataset, steps *StepLog) {
	steps.Step("Creating derived features...")

	for _, t := range ds.Trips {
		deriveDuration(t)

		t.DistanceKm = spatial.HaversineKm(
			t.PickupLatitude, t.PickupLongitude,
			t.DropoffLatitude, t.DropoffLongitude,
		)

		// Speed is only defined for a strictly positive duration.
		if t.DurationSec.Valid && t.DurationSec.Float64 > 0 {
			t.SpeedKmh = sql.NullFloat64{
				Float64: t.DistanceKm / (t.DurationSec.Float64 / 3600),
				Valid:   true,
			}
		}

		if ds.HasFare {
			t.FarePerKm = deriveFarePerKm(t)
		}

		if t.SpeedKmh.Valid {
			eff := t.SpeedKmh.Float64 / SpeedOutlierThreshold
			if eff > 1.0 {
				eff = 1.0
			}
			t.Efficiency = sql.NullFloat64{Float64: eff, Valid: true}
		}
	}

	deriveIdleTimes(ds)

	steps.Step("Created derived features: trip_speed_kmh, idle_time_sec, fare_per_km, trip_efficiency")
}

// deriveDuration sets the trip duration in seconds; negative differences and
// missing timestamps leave it absent.
func deriveDuration(t *models.Trip) {
	if !t.Pickup.Valid || !t.Dropoff.Valid {
		return
	}
	d := t.Dropoff.Time.Sub(t.Pickup.Time).Seconds()
	if d < 0 {
		return
	}
	t.DurationSec = sql.NullFloat64{Float64: d, Valid: true}
}

// deriveFarePerKm divides fare by distance; a distance at or near zero
// produces an absent value rather than an infinity or NaN.
func deriveFarePerKm(t *models.Trip) sql.NullFloat64 {
	if !t.Fare.Valid {
		return sql.NullFloat64{}
	}
	v := t.Fare.Float64 / t.DistanceKm
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// deriveIdleTimes sorts the dataset stably by (vendor, pickup time) and
// computes, in one sequential pass, the gap between each trip's pickup and
// the same vendor's previous dropoff. The first chronological trip of a
// vendor, and any negative gap (overlapping trips), stay absent. The
// last-dropoff entry for the vendor is updated after the gap is read, so each
// record sees only state from strictly earlier records.
func deriveIdleTimes(ds *models.Dataset) {
	sort.SliceStable(ds.Trips, func(i, j int) bool {
		a, b := ds.Trips[i], ds.Trips[j]
		if a.VendorID != b.VendorID {
			return a.VendorID < b.VendorID
		}
		return a.Pickup.Time.Before(b.Pickup.Time)
	})

	lastDropoff := make(map[int64]time.Time)
	for _, t := range ds.Trips {
		if prev, ok := lastDropoff[t.VendorID]; ok {
			diff := t.Pickup.Time.Sub(prev).Seconds()
			if diff >= 0 {
				t.IdleSec = sql.NullFloat64{Float64: diff, Valid: true}
			}
		}
		lastDropoff[t.VendorID] = t.Dropoff.Time
	}
}
