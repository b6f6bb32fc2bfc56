// FilePath: internal/interval/interval.go

// Package interval turns a device's discrete readings into continuous
// state intervals. Each interval spans two temporally adjacent
// readings and carries the status of the earlier one; the last reading
// of a device never starts an interval because its end is unknown.
package interval

import (
	"sort"
	"time"

	"github.com/lumiguard/andonhub/internal/models"
	"github.com/lumiguard/andonhub/internal/shiftcal"
)

// Interval is a half-open [Start, End) span of one device state.
type Interval struct {
	MacAddress string
	DeviceName string
	Start      time.Time
	End        time.Time
	Status     models.Status
}

// Duration returns the interval length in seconds.
func (iv Interval) Duration() float64 {
	return iv.End.Sub(iv.Start).Seconds()
}

// Build walks consecutive reading pairs of a single device and emits
// the intervals between them. Pairs straddling a logical-day boundary
// are dropped entirely (not clipped) so that no activity is attributed
// to the wrong production day, and non-positive-duration pairs are
// skipped. Readings are stable-sorted by timestamp first, preserving
// arrival order on ties.
func Build(cal shiftcal.Calendar, readings []models.Reading) []Interval {
	if len(readings) < 2 {
		return nil
	}

	sorted := make([]models.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var out []Interval
	for i := 0; i+1 < len(sorted); i++ {
		cur, next := sorted[i], sorted[i+1]

		if cal.LogicalDate(cur.Timestamp) != cal.LogicalDate(next.Timestamp) {
			continue
		}
		if !next.Timestamp.After(cur.Timestamp) {
			continue
		}

		out = append(out, Interval{
			MacAddress: cur.MacAddress,
			DeviceName: cur.DeviceName,
			Start:      cur.Timestamp,
			End:        next.Timestamp,
			Status:     cur.Status(),
		})
	}
	return out
}

// BuildAll groups readings by device and builds intervals per group.
// The relative order of each device's readings is preserved.
func BuildAll(cal shiftcal.Calendar, readings []models.Reading) []Interval {
	byDevice := make(map[string][]models.Reading)
	var order []string
	for _, r := range readings {
		if _, seen := byDevice[r.MacAddress]; !seen {
			order = append(order, r.MacAddress)
		}
		byDevice[r.MacAddress] = append(byDevice[r.MacAddress], r)
	}

	var out []Interval
	for _, mac := range order {
		out = append(out, Build(cal, byDevice[mac])...)
	}
	return out
}
