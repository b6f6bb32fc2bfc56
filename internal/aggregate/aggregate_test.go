// FilePath: internal/aggregate/aggregate_test.go
package aggregate

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/lumiguard/andonhub/internal/models"
	"github.com/lumiguard/andonhub/internal/shiftcal"
)

var cal = shiftcal.New(shiftcal.DefaultConfig())

func reading(t *testing.T, mac, name, ts string, red, amber, green bool) models.Reading {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", ts, time.Local)
	if err != nil {
		t.Fatalf("parse %q: %v", ts, err)
	}
	return models.Reading{
		MacAddress: mac,
		DeviceName: name,
		Red:        red,
		Amber:      amber,
		Green:      green,
		Timestamp:  parsed,
	}
}

func parseFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("parse float %q: %v", s, err)
	}
	return v
}

func TestGlobalContributionNormalization(t *testing.T) {
	// Two devices, each with one 100-second Run interval in the same
	// window: the total reads 100 (average device) while each device
	// row keeps its full 100 seconds.
	readings := []models.Reading{
		reading(t, "aa:01", "Press", "2024-01-02 08:00:00", false, false, true),
		reading(t, "aa:01", "Press", "2024-01-02 08:01:40", false, true, false),
		reading(t, "aa:02", "Lathe", "2024-01-02 08:00:00", false, false, true),
		reading(t, "aa:02", "Lathe", "2024-01-02 08:01:40", false, true, false),
	}

	res := Run(cal, "2024-01-02", shiftcal.Any, readings)
	totals := res.Totals()
	if totals.Green != 100 {
		t.Errorf("total green = %v, want 100 (200s split across 2 devices)", totals.Green)
	}

	for _, row := range res.PerDevice() {
		if got := parseFloat(t, row.GreenSeconds); got != 100 {
			t.Errorf("device %s green = %v, want full 100", row.MacAddress, got)
		}
	}
}

func TestPercentSumsToHundred(t *testing.T) {
	readings := []models.Reading{
		reading(t, "aa:01", "Press", "2024-01-02 08:00:00", false, false, true),
		reading(t, "aa:01", "Press", "2024-01-02 08:10:00", false, true, false),
		reading(t, "aa:01", "Press", "2024-01-02 08:10:07", true, false, false),
		reading(t, "aa:01", "Press", "2024-01-02 08:11:00", false, false, true),
	}

	summary := Run(cal, "2024-01-02", shiftcal.Any, readings).TotalSummary()
	sum := parseFloat(t, summary.RedPercent) +
		parseFloat(t, summary.AmberPercent) +
		parseFloat(t, summary.GreenPercent)
	if math.Abs(sum-100.0) > 0.01 {
		t.Errorf("active percents sum to %v, want 100.00 +-0.01", sum)
	}
}

func TestAvailabilityScenario(t *testing.T) {
	// Non-Friday morning, no overtime: Run 600s, Idle 30s,
	// planned 8h -> availability 600/28800*100 = 2.08.
	readings := []models.Reading{
		reading(t, "aa:01", "Press", "2024-01-02 07:00:00", false, false, true),
		reading(t, "aa:01", "Press", "2024-01-02 07:10:00", false, true, false),
		reading(t, "aa:01", "Press", "2024-01-02 07:10:30", true, false, false),
		reading(t, "aa:01", "Press", "2024-01-02 19:00:00", false, false, true),
	}

	res := Run(cal, "2024-01-02", shiftcal.Morning, readings)
	totals := res.Totals()
	if totals.Green != 600 {
		t.Errorf("green seconds = %v, want 600", totals.Green)
	}
	if totals.Amber != 30 {
		t.Errorf("amber seconds = %v, want 30", totals.Amber)
	}
	if totals.Planned != 28800 {
		t.Errorf("planned seconds = %v, want 28800", totals.Planned)
	}

	summary := res.TotalSummary()
	if summary.Availability != "2.08" {
		t.Errorf("availability = %q, want \"2.08\"", summary.Availability)
	}
}

func TestAvailabilityBounds(t *testing.T) {
	readings := []models.Reading{
		reading(t, "aa:01", "Press", "2024-01-02 07:00:00", false, false, true),
		reading(t, "aa:01", "Press", "2024-01-02 10:00:00", false, true, false),
	}

	summary := Run(cal, "2024-01-02", shiftcal.Morning, readings).TotalSummary()
	oee := parseFloat(t, summary.Availability)
	if oee < 0 || oee > 100 {
		t.Errorf("availability %v outside [0, 100]", oee)
	}
}

func TestZeroPlannedFormatsZero(t *testing.T) {
	summary := SummaryFromTotals(Totals{Green: 100}, "Total")
	if summary.Availability != "0.00" {
		t.Errorf("availability with zero planned = %q, want \"0.00\"", summary.Availability)
	}
	if summary.UnknownPercent != "0.00" {
		t.Errorf("unknown percent with zero planned = %q, want \"0.00\"", summary.UnknownPercent)
	}
}

func TestUnknownExcludedFromActiveTotal(t *testing.T) {
	readings := []models.Reading{
		reading(t, "aa:01", "Press", "2024-01-02 08:00:00", false, false, false), // Unknown
		reading(t, "aa:01", "Press", "2024-01-02 08:05:00", false, false, true),
		reading(t, "aa:01", "Press", "2024-01-02 08:10:00", false, true, false),
	}

	res := Run(cal, "2024-01-02", shiftcal.Any, readings)
	totals := res.Totals()
	if totals.Unknown != 300 {
		t.Errorf("unknown seconds = %v, want 300", totals.Unknown)
	}
	summary := res.TotalSummary()
	if got := parseFloat(t, summary.TotalSeconds); got != 300 {
		t.Errorf("total (active) seconds = %v, want 300 (unknown excluded)", got)
	}
}

func TestShiftFilterSkipsOtherHalf(t *testing.T) {
	readings := []models.Reading{
		reading(t, "aa:01", "Press", "2024-01-02 08:00:00", false, false, true),
		reading(t, "aa:01", "Press", "2024-01-02 08:05:00", false, true, false),
		reading(t, "aa:01", "Press", "2024-01-02 20:00:00", false, false, true),
		reading(t, "aa:01", "Press", "2024-01-02 20:05:00", false, true, false),
	}

	res := Run(cal, "2024-01-02", shiftcal.Night, readings)
	totals := res.Totals()
	if totals.Green != 300 {
		t.Errorf("night green = %v, want 300", totals.Green)
	}
	if totals.PlannedMorning != 0 {
		t.Errorf("planned morning = %v, want 0 under night filter", totals.PlannedMorning)
	}
	if totals.PlannedNight != 8*3600 {
		t.Errorf("planned night = %v, want baseline 8h", totals.PlannedNight)
	}
}

func TestRequestedButEmptyShiftKeepsBaselineDenominator(t *testing.T) {
	// Morning-only activity with no filter: the night half still gets
	// the 8h baseline so the full-day denominator is 16h.
	readings := []models.Reading{
		reading(t, "aa:01", "Press", "2024-01-02 08:00:00", false, false, true),
		reading(t, "aa:01", "Press", "2024-01-02 08:05:00", false, true, false),
	}

	totals := Run(cal, "2024-01-02", shiftcal.Any, readings).Totals()
	if totals.Planned != 16*3600 {
		t.Errorf("planned = %v, want 16h", totals.Planned)
	}
}

func TestPerShiftRowsOrderedAndLabeled(t *testing.T) {
	readings := []models.Reading{
		reading(t, "aa:01", "Press", "2024-01-02 20:00:00", false, false, true),
		reading(t, "aa:01", "Press", "2024-01-02 20:05:00", false, true, false),
		reading(t, "aa:01", "Press", "2024-01-02 08:00:00", false, false, true),
		reading(t, "aa:01", "Press", "2024-01-02 08:05:00", false, true, false),
	}

	rows := Run(cal, "2024-01-02", shiftcal.Any, readings).PerShift()
	if len(rows) != 2 {
		t.Fatalf("got %d shift rows, want 2", len(rows))
	}
	if rows[0].CalculatedShift != "Morning" || rows[1].CalculatedShift != "Night" {
		t.Errorf("shift order = %s, %s", rows[0].CalculatedShift, rows[1].CalculatedShift)
	}
	if rows[0].ShiftType != "Normal (8h)" {
		t.Errorf("morning shift type = %q", rows[0].ShiftType)
	}
	if rows[0].ShiftDate != "2024-01-02" {
		t.Errorf("shift date = %q", rows[0].ShiftDate)
	}
}

func TestGanttOrderAndOmission(t *testing.T) {
	readings := []models.Reading{
		reading(t, "aa:01", "Press", "2024-01-02 08:00:00", false, true, false), // Idle interval
		reading(t, "aa:01", "Press", "2024-01-02 08:05:00", false, false, true), // Run interval
		reading(t, "aa:01", "Press", "2024-01-02 08:10:00", false, false, true),
	}

	series := Run(cal, "2024-01-02", shiftcal.Any, readings).Gantt()
	if len(series) != 2 {
		t.Fatalf("got %d series, want 2 (empty statuses omitted)", len(series))
	}
	if series[0].Name != "Run" || series[1].Name != "Idle" {
		t.Errorf("series order = %s, %s, want Run then Idle", series[0].Name, series[1].Name)
	}
	if series[0].Data[0].X != "Press" {
		t.Errorf("gantt x = %q, want device name", series[0].Data[0].X)
	}
}

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{28800, "28800"},
		{600, "600"},
		{100.0 / 3 * 3, "100"},
		{33.333333, "33.33"},
		{0, "0"},
	}
	for _, tc := range cases {
		if got := FormatSeconds(tc.in); got != tc.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
