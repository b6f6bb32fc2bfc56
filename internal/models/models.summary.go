// FilePath: internal/models/models.summary.go
package models

// StatusSummary is one aggregated roll-up row. All numeric fields are
// rendered as decimal strings; percentages carry exactly two decimals.
// red/amber/green percentages are relative to total_seconds (active
// time, unknown excluded); unknown_percent and availability_oee are
// relative to planned_production_seconds.
type StatusSummary struct {
	RedSeconds     string `json:"red_seconds"`
	AmberSeconds   string `json:"amber_seconds"`
	GreenSeconds   string `json:"green_seconds"`
	UnknownSeconds string `json:"unknown_seconds"`
	TotalSeconds   string `json:"total_seconds"`
	RedPercent     string `json:"red_percent"`
	AmberPercent   string `json:"amber_percent"`
	GreenPercent   string `json:"green_percent"`
	UnknownPercent string `json:"unknown_percent"`
	PlannedSeconds string `json:"planned_production_seconds"`
	PlannedMorning string `json:"planned_morning_seconds"`
	PlannedNight   string `json:"planned_night_seconds"`
	Availability   string `json:"availability_oee"`
	ShiftType      string `json:"shift_type"`
}

// DevicePerformance is a per-device, per-shift roll-up.
type DevicePerformance struct {
	StatusSummary
	MacAddress      string `json:"mac_address"`
	DeviceName      string `json:"device_name"`
	ShiftDate       string `json:"shift_date"`
	CalculatedShift string `json:"calculated_shift"`
}

// ShiftPerformance is a per-shift roll-up across all devices.
type ShiftPerformance struct {
	StatusSummary
	ShiftDate       string `json:"shift_date"`
	CalculatedShift string `json:"calculated_shift"`
}

// DatePerformance is a full-day roll-up used by multi-day summaries.
type DatePerformance struct {
	StatusSummary
	Date     string `json:"date"`
	RedCount string `json:"red_count"`
}

// GanttPoint is one interval rendered as a timeline bar.
type GanttPoint struct {
	X string   `json:"x"`
	Y [2]int64 `json:"y"`
}

// GanttSeries groups timeline bars of one status across devices.
type GanttSeries struct {
	Name string       `json:"name"`
	Data []GanttPoint `json:"data"`
}

// DateRange echoes the window a summary was computed over.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Shift string `json:"shift"`
}

// SummaryData is the single-date summary payload.
type SummaryData struct {
	Total     StatusSummary       `json:"total"`
	PerDevice []DevicePerformance `json:"per_device"`
	PerShift  []ShiftPerformance  `json:"per_shift"`
	Gantt     []GanttSeries       `json:"gantt"`
	DateRange DateRange           `json:"date_range"`
}

// RangeSummaryData is the multi-day summary payload.
type RangeSummaryData struct {
	Total     StatusSummary     `json:"total"`
	PerDate   []DatePerformance `json:"per_date"`
	DateRange DateRange         `json:"date_range"`
}

// IntervalSeriesData is the gantt endpoint payload.
type IntervalSeriesData struct {
	Series []GanttSeries `json:"series"`
}

// NoDataShiftType labels sentinel rows returned for valid queries that
// matched zero readings.
const NoDataShiftType = "No Data"

// NoDataSummary returns the all-zero sentinel row.
func NoDataSummary() StatusSummary {
	return StatusSummary{
		RedSeconds:     "0",
		AmberSeconds:   "0",
		GreenSeconds:   "0",
		UnknownSeconds: "0",
		TotalSeconds:   "0",
		RedPercent:     "0.00",
		AmberPercent:   "0.00",
		GreenPercent:   "0.00",
		UnknownPercent: "0.00",
		PlannedSeconds: "0",
		PlannedMorning: "0",
		PlannedNight:   "0",
		Availability:   "0.00",
		ShiftType:      NoDataShiftType,
	}
}
