// FilePath: internal/aggregate/aggregate.go

// Package aggregate rolls state intervals up into availability
// summaries for one logical production date.
//
// Three roll-ups are produced in a single pass: a global total, a
// per-shift total and a per-device-per-shift total. The global and
// per-shift buckets receive each interval's duration divided by the
// number of distinct devices seen in the window, so they read as an
// "average device" rather than a sum across N machines; the device
// buckets receive the full duration. Unknown time is tracked apart
// and never counts into active (total) seconds.
package aggregate

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/lumiguard/andonhub/internal/interval"
	"github.com/lumiguard/andonhub/internal/models"
	"github.com/lumiguard/andonhub/internal/shiftcal"
)

// statusOrder fixes the presentation order of series and rows.
var statusOrder = []models.Status{
	models.StatusRun,
	models.StatusIdle,
	models.StatusError,
	models.StatusUnknown,
}

type bucket struct {
	red     float64
	amber   float64
	green   float64
	unknown float64
}

func (b *bucket) add(status models.Status, seconds float64) {
	switch status {
	case models.StatusError:
		b.red += seconds
	case models.StatusIdle:
		b.amber += seconds
	case models.StatusRun:
		b.green += seconds
	default:
		b.unknown += seconds
	}
}

func (b *bucket) active() float64 {
	return b.red + b.amber + b.green
}

// Totals is the numeric form of a roll-up, kept unformatted so that
// multi-day summaries can sum exactly before any rounding happens.
type Totals struct {
	Red            float64
	Amber          float64
	Green          float64
	Unknown        float64
	Planned        float64
	PlannedMorning float64
	PlannedNight   float64
	RedCount       int
}

// Add accumulates another date's totals into t.
func (t *Totals) Add(o Totals) {
	t.Red += o.Red
	t.Amber += o.Amber
	t.Green += o.Green
	t.Unknown += o.Unknown
	t.Planned += o.Planned
	t.PlannedMorning += o.PlannedMorning
	t.PlannedNight += o.PlannedNight
	t.RedCount += o.RedCount
}

// Result holds the roll-ups of one aggregation pass.
type Result struct {
	cal         shiftcal.Calendar
	date        string
	filter      shiftcal.Shift
	deviceCount int

	total     bucket
	perShift  map[shiftcal.Shift]*bucket
	perDevice map[string]map[shiftcal.Shift]*bucket

	shiftStamps map[shiftcal.Shift][]time.Time
	planned     map[shiftcal.Shift]shiftcal.PlannedTime
	names       map[string]string
	intervals   []interval.Interval
	redCount    int
}

// Run aggregates all readings of one logical date. The readings must
// already be restricted to the date's (or shift's) window; filter
// narrows accumulation to one shift, Any takes both. Planned time is
// computed per observed shift from the interval start stamps of that
// shift, falling back to the base-hours baseline when a requested
// shift saw no activity so OEE denominators are never spuriously zero.
func Run(cal shiftcal.Calendar, date string, filter shiftcal.Shift, readings []models.Reading) *Result {
	r := &Result{
		cal:         cal,
		date:        date,
		filter:      filter,
		perShift:    make(map[shiftcal.Shift]*bucket),
		perDevice:   make(map[string]map[shiftcal.Shift]*bucket),
		shiftStamps: make(map[shiftcal.Shift][]time.Time),
		planned:     make(map[shiftcal.Shift]shiftcal.PlannedTime),
		names:       make(map[string]string),
	}

	seen := make(map[string]bool)
	for _, reading := range readings {
		if !seen[reading.MacAddress] {
			seen[reading.MacAddress] = true
			r.deviceCount++
		}
		if reading.DeviceName != "" {
			r.names[reading.MacAddress] = reading.DeviceName
		}
	}

	for _, iv := range interval.BuildAll(cal, readings) {
		shift := cal.ShiftOf(iv.Start)
		if filter != shiftcal.Any && shift != filter {
			continue
		}

		duration := iv.Duration()
		global := duration
		if r.deviceCount > 0 {
			global = duration / float64(r.deviceCount)
		}

		r.total.add(iv.Status, global)

		sb := r.perShift[shift]
		if sb == nil {
			sb = &bucket{}
			r.perShift[shift] = sb
		}
		sb.add(iv.Status, global)

		devShifts := r.perDevice[iv.MacAddress]
		if devShifts == nil {
			devShifts = make(map[shiftcal.Shift]*bucket)
			r.perDevice[iv.MacAddress] = devShifts
		}
		db := devShifts[shift]
		if db == nil {
			db = &bucket{}
			devShifts[shift] = db
		}
		db.add(iv.Status, duration)

		r.shiftStamps[shift] = append(r.shiftStamps[shift], iv.Start)
		if iv.Status == models.StatusError {
			r.redCount++
		}
		r.intervals = append(r.intervals, iv)
	}

	for _, shift := range r.requestedShifts() {
		r.planned[shift] = cal.PlannedTime(shift, date, r.shiftStamps[shift])
	}

	return r
}

func (r *Result) requestedShifts() []shiftcal.Shift {
	if r.filter == shiftcal.Any {
		return []shiftcal.Shift{shiftcal.Morning, shiftcal.Night}
	}
	return []shiftcal.Shift{r.filter}
}

// Totals returns the numeric global roll-up.
func (r *Result) Totals() Totals {
	t := Totals{
		Red:      r.total.red,
		Amber:    r.total.amber,
		Green:    r.total.green,
		Unknown:  r.total.unknown,
		RedCount: r.redCount,
	}
	if pt, ok := r.planned[shiftcal.Morning]; ok {
		t.PlannedMorning = pt.Seconds
	}
	if pt, ok := r.planned[shiftcal.Night]; ok {
		t.PlannedNight = pt.Seconds
	}
	t.Planned = t.PlannedMorning + t.PlannedNight
	return t
}

// TotalSummary renders the global roll-up as a summary row.
func (r *Result) TotalSummary() models.StatusSummary {
	return SummaryFromTotals(r.Totals(), r.shiftLabel())
}

func (r *Result) shiftLabel() string {
	if r.filter != shiftcal.Any {
		return r.planned[r.filter].Label
	}
	return r.cal.PlannedTime(shiftcal.Any, r.date, r.allStamps()).Label
}

func (r *Result) allStamps() []time.Time {
	var out []time.Time
	for _, stamps := range r.shiftStamps {
		out = append(out, stamps...)
	}
	return out
}

// PerShift renders the per-shift roll-ups, Morning before Night,
// observed shifts only.
func (r *Result) PerShift() []models.ShiftPerformance {
	var out []models.ShiftPerformance
	for _, shift := range []shiftcal.Shift{shiftcal.Morning, shiftcal.Night} {
		b := r.perShift[shift]
		if b == nil {
			continue
		}
		out = append(out, models.ShiftPerformance{
			StatusSummary:   r.summaryForShift(*b, shift),
			ShiftDate:       r.date,
			CalculatedShift: string(shift),
		})
	}
	return out
}

// PerDevice renders the per-device-per-shift roll-ups, ordered by
// device name with the mac as tie-break.
func (r *Result) PerDevice() []models.DevicePerformance {
	macs := make([]string, 0, len(r.perDevice))
	for mac := range r.perDevice {
		macs = append(macs, mac)
	}
	sort.Slice(macs, func(i, j int) bool {
		ni, nj := r.names[macs[i]], r.names[macs[j]]
		if ni != nj {
			return ni < nj
		}
		return macs[i] < macs[j]
	})

	var out []models.DevicePerformance
	for _, mac := range macs {
		for _, shift := range []shiftcal.Shift{shiftcal.Morning, shiftcal.Night} {
			b := r.perDevice[mac][shift]
			if b == nil {
				continue
			}
			out = append(out, models.DevicePerformance{
				StatusSummary:   r.summaryForShift(*b, shift),
				MacAddress:      mac,
				DeviceName:      r.names[mac],
				ShiftDate:       r.date,
				CalculatedShift: string(shift),
			})
		}
	}
	return out
}

// summaryForShift formats a bucket against one shift's planned time.
func (r *Result) summaryForShift(b bucket, shift shiftcal.Shift) models.StatusSummary {
	pt := r.planned[shift]
	t := Totals{
		Red:     b.red,
		Amber:   b.amber,
		Green:   b.green,
		Unknown: b.unknown,
		Planned: pt.Seconds,
	}
	if shift == shiftcal.Morning {
		t.PlannedMorning = pt.Seconds
	} else {
		t.PlannedNight = pt.Seconds
	}
	return SummaryFromTotals(t, pt.Label)
}

// Gantt flattens the accumulated intervals into status-named timeline
// series, ordered Run, Idle, Error, Unknown, empty series omitted.
func (r *Result) Gantt() []models.GanttSeries {
	return GanttFromIntervals(r.intervals)
}

// Intervals returns the intervals that survived the shift filter.
func (r *Result) Intervals() []interval.Interval {
	return r.intervals
}

// GanttFromIntervals renders intervals as chart series. The x value is
// the device name, falling back to the mac address.
func GanttFromIntervals(intervals []interval.Interval) []models.GanttSeries {
	byStatus := make(map[models.Status]*models.GanttSeries)
	for _, iv := range intervals {
		series := byStatus[iv.Status]
		if series == nil {
			series = &models.GanttSeries{Name: string(iv.Status)}
			byStatus[iv.Status] = series
		}
		label := iv.DeviceName
		if label == "" {
			label = iv.MacAddress
		}
		series.Data = append(series.Data, models.GanttPoint{
			X: label,
			Y: [2]int64{iv.Start.UnixMilli(), iv.End.UnixMilli()},
		})
	}

	var out []models.GanttSeries
	for _, status := range statusOrder {
		if series := byStatus[status]; series != nil {
			out = append(out, *series)
		}
	}
	return out
}

// SummaryFromTotals formats numeric totals into the wire row. Active
// percentages are relative to red+amber+green; unknown and OEE are
// relative to planned seconds, rendering "0.00" on a zero denominator.
func SummaryFromTotals(t Totals, shiftType string) models.StatusSummary {
	active := t.Red + t.Amber + t.Green
	return models.StatusSummary{
		RedSeconds:     FormatSeconds(t.Red),
		AmberSeconds:   FormatSeconds(t.Amber),
		GreenSeconds:   FormatSeconds(t.Green),
		UnknownSeconds: FormatSeconds(t.Unknown),
		TotalSeconds:   FormatSeconds(active),
		RedPercent:     FormatPercent(t.Red, active),
		AmberPercent:   FormatPercent(t.Amber, active),
		GreenPercent:   FormatPercent(t.Green, active),
		UnknownPercent: FormatPercent(t.Unknown, t.Planned),
		PlannedSeconds: FormatSeconds(t.Planned),
		PlannedMorning: FormatSeconds(t.PlannedMorning),
		PlannedNight:   FormatSeconds(t.PlannedNight),
		Availability:   FormatPercent(t.Green, t.Planned),
		ShiftType:      shiftType,
	}
}

// FormatSeconds renders a seconds value as a decimal string, rounded
// to at most two decimals with trailing zeros trimmed.
func FormatSeconds(v float64) string {
	rounded := math.Round(v*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}

// FormatPercent renders num/den as a percentage with exactly two
// decimals, or "0.00" when the denominator is not positive.
func FormatPercent(num, den float64) string {
	if den <= 0 {
		return "0.00"
	}
	return strconv.FormatFloat(num/den*100, 'f', 2, 64)
}
