// Package lookup provides pure lookups over ordered price history.
package lookup

import (
	"errors"

	"trading-call-lab/internal/domain"
)

// ErrNoPriceData is returned when a lookup has no snapshot to answer with.
var ErrNoPriceData = errors.New("no price data available")

// EntryPriceAt returns the price of the first snapshot at or after target.
// Snapshots must be ordered ascending by time.
// Returns ErrNoPriceData if the slice is empty or every snapshot precedes
// the target.
func EntryPriceAt(target int64, snapshots []*domain.PriceSnapshot) (float64, error) {
	for _, s := range snapshots {
		if s.TimestampMs >= target {
			return s.PriceUSD, nil
		}
	}
	return 0, ErrNoPriceData
}

// FromTime returns the suffix of snapshots at or after target.
// Snapshots must be ordered ascending by time.
func FromTime(target int64, snapshots []*domain.PriceSnapshot) []*domain.PriceSnapshot {
	for i, s := range snapshots {
		if s.TimestampMs >= target {
			return snapshots[i:]
		}
	}
	return nil
}
