package pipeline

import (
	"github.com/nycmobility/trips-pipeline-go/internal/models"
)

// SpeedOutlierThreshold is the fixed speed ceiling in km/h. Records strictly
// above it are flagged; the same constant normalizes trip efficiency.
const SpeedOutlierThreshold = 120.0

// OutlierList is an insertion-ordered, append-only accumulator of flagged
// trip snapshots. Flagging is additive: flagged trips stay in the dataset and
// are additionally copied here for the transparency log.
type OutlierList struct {
	trips []models.Trip
}

// NewOutlierList creates an empty accumulator.
func NewOutlierList() *OutlierList {
	return &OutlierList{}
}

// Append adds a trip snapshot at the end of the list.
func (l *OutlierList) Append(t models.Trip) {
	l.trips = append(l.trips, t)
}

// Len returns the number of accumulated snapshots.
func (l *OutlierList) Len() int {
	return len(l.trips)
}

// Records returns the snapshots in insertion order.
func (l *OutlierList) Records() []models.Trip {
	return l.trips
}

// DetectOutliers scans the derived dataset once, in its current order, and
// collects every record whose speed strictly exceeds SpeedOutlierThreshold.
// An absent speed counts as 0, so such records are never flagged. No
// deduplication is applied.
func DetectOutliers(ds *models.Dataset, steps *StepLog) *OutlierList {
	steps.Step("Detecting speed outliers...")

	outliers := NewOutlierList()
	for _, t := range ds.Trips {
		speed := 0.0
		if t.SpeedKmh.Valid {
			speed = t.SpeedKmh.Float64
		}
		if speed > SpeedOutlierThreshold {
			outliers.Append(t.Snapshot())
		}
	}

	steps.Step("Detected %d speed outliers (> %.1f km/h)", outliers.Len(), SpeedOutlierThreshold)
	return outliers
}
