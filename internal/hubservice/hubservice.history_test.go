// FilePath: internal/hubservice/hubservice.history_test.go
package hubservice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lumiguard/andonhub/internal/errors"
	"github.com/lumiguard/andonhub/internal/models"
	"github.com/lumiguard/andonhub/internal/repository"
	"github.com/lumiguard/andonhub/internal/shiftcal"
)

type fakeDeviceRepo struct {
	devices []*models.Device
}

func (f *fakeDeviceRepo) Get(_ context.Context, macAddress string) (*models.Device, error) {
	for _, d := range f.devices {
		if d.MacAddress == macAddress {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDeviceRepo) List(_ context.Context) ([]*models.Device, error) {
	return f.devices, nil
}

func (f *fakeDeviceRepo) ListActive(_ context.Context) ([]*models.Device, error) {
	var out []*models.Device
	for _, d := range f.devices {
		if d.IsActive() {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDeviceRepo) UpdateLastSeen(_ context.Context, _ string, _ time.Time) error {
	return nil
}

type fakeReadingRepo struct {
	readings []models.Reading
}

func (f *fakeReadingRepo) Insert(_ context.Context, reading *models.Reading) error {
	f.readings = append(f.readings, *reading)
	return nil
}

func (f *fakeReadingRepo) GetWindow(_ context.Context, start, end time.Time) ([]models.Reading, error) {
	var out []models.Reading
	for _, r := range f.readings {
		if !r.Timestamp.Before(start) && !r.Timestamp.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReadingRepo) GetWindowByDevice(ctx context.Context, macAddress string, start, end time.Time) ([]models.Reading, error) {
	all, _ := f.GetWindow(ctx, start, end)
	var out []models.Reading
	for _, r := range all {
		if r.MacAddress == macAddress {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReadingRepo) DeleteBefore(_ context.Context, before time.Time) (int64, error) {
	var kept []models.Reading
	var deleted int64
	for _, r := range f.readings {
		if r.Timestamp.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	f.readings = kept
	return deleted, nil
}

func newTestService(devices []*models.Device, readings []models.Reading) *HubService {
	return New(
		&fakeDeviceRepo{devices: devices},
		&fakeReadingRepo{readings: readings},
		shiftcal.New(shiftcal.DefaultConfig()),
	)
}

func reading(mac string, red, amber, green bool, ts time.Time) models.Reading {
	return models.Reading{
		MacAddress: mac,
		Red:        red,
		Amber:      amber,
		Green:      green,
		Timestamp:  ts,
	}
}

func activeDevice(mac, name string) *models.Device {
	return &models.Device{MacAddress: mac, DeviceName: name, Status: models.DeviceActive}
}

func TestSummaryForDateNoData(t *testing.T) {
	svc := newTestService([]*models.Device{activeDevice("aa:01", "Press 1")}, nil)

	data, err := svc.SummaryForDate(context.Background(), "2026-08-25", shiftcal.Any)
	if err != nil {
		t.Fatalf("SummaryForDate: %v", err)
	}
	if data.Total.ShiftType != models.NoDataShiftType {
		t.Errorf("shift_type = %q, want %q", data.Total.ShiftType, models.NoDataShiftType)
	}
	if data.Total.TotalSeconds != "0" || data.Total.Availability != "0.00" {
		t.Errorf("sentinel row = %+v, want zeros", data.Total)
	}
	if len(data.PerDevice) != 0 || len(data.PerShift) != 0 || len(data.Gantt) != 0 {
		t.Error("sentinel payload must have empty slices, not nil-omitted data")
	}
	if data.DateRange.Shift != "All" {
		t.Errorf("date_range.shift = %q, want All", data.DateRange.Shift)
	}
}

func TestSummaryForDateMissingDate(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.SummaryForDate(context.Background(), "", shiftcal.Any)
	if !errors.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSummaryForDateDecoratesDeviceNames(t *testing.T) {
	day := time.Date(2026, 8, 25, 9, 0, 0, 0, time.Local)
	readings := []models.Reading{
		reading("aa:01", false, false, true, day),
		reading("aa:01", false, false, true, day.Add(10*time.Minute)),
	}
	svc := newTestService([]*models.Device{activeDevice("aa:01", "Press 1")}, readings)

	data, err := svc.SummaryForDate(context.Background(), "2026-08-25", shiftcal.Any)
	if err != nil {
		t.Fatalf("SummaryForDate: %v", err)
	}
	if len(data.PerDevice) != 1 {
		t.Fatalf("per_device rows = %d, want 1", len(data.PerDevice))
	}
	if data.PerDevice[0].DeviceName != "Press 1" {
		t.Errorf("device_name = %q, want Press 1", data.PerDevice[0].DeviceName)
	}
	if data.Total.GreenSeconds != "600" {
		t.Errorf("green_seconds = %q, want 600", data.Total.GreenSeconds)
	}
}

func TestSummaryForRangeInvalidLiteral(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.SummaryForRange(context.Background(), "2weeks")
	if !errors.IsValidation(err) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestSummaryForRangeSumsPerDate(t *testing.T) {
	// 600s Run on the middle date of the trailing three days.
	mid := time.Date(2026, 8, 25, 9, 0, 0, 0, time.Local)
	readings := []models.Reading{
		reading("aa:01", false, false, true, mid),
		reading("aa:01", false, false, true, mid.Add(10*time.Minute)),
	}
	svc := newTestService([]*models.Device{activeDevice("aa:01", "Press 1")}, readings).
		WithClock(func() time.Time { return time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local) })

	data, err := svc.SummaryForRange(context.Background(), "3days")
	if err != nil {
		t.Fatalf("SummaryForRange: %v", err)
	}
	if len(data.PerDate) != 3 {
		t.Fatalf("per_date rows = %d, want 3", len(data.PerDate))
	}
	if data.PerDate[0].Date != "2026-08-24" || data.PerDate[2].Date != "2026-08-26" {
		t.Fatalf("per_date dates = %s..%s, want 2026-08-24..2026-08-26",
			data.PerDate[0].Date, data.PerDate[2].Date)
	}

	if data.PerDate[0].ShiftType != models.NoDataShiftType {
		t.Errorf("empty date shift_type = %q, want %q", data.PerDate[0].ShiftType, models.NoDataShiftType)
	}
	if data.PerDate[1].GreenSeconds != "600" {
		t.Errorf("middle date green_seconds = %q, want 600", data.PerDate[1].GreenSeconds)
	}
	if data.PerDate[1].RedCount != "0" {
		t.Errorf("red_count = %q, want 0", data.PerDate[1].RedCount)
	}

	// Grand total equals the numeric sum of the per-date totals; empty
	// dates contribute nothing, including planned time.
	if data.Total.GreenSeconds != "600" {
		t.Errorf("total green_seconds = %q, want 600", data.Total.GreenSeconds)
	}
	if data.Total.ShiftType != "Total" {
		t.Errorf("total shift_type = %q, want Total", data.Total.ShiftType)
	}
	if data.Total.PlannedSeconds != data.PerDate[1].PlannedSeconds {
		t.Errorf("total planned = %q, want %q from the only populated date",
			data.Total.PlannedSeconds, data.PerDate[1].PlannedSeconds)
	}
}

func TestSummaryForDateRangeValidation(t *testing.T) {
	svc := newTestService(nil, nil)
	ctx := context.Background()

	cases := []struct {
		name       string
		start, end string
	}{
		{"missing start", "", "2026-08-26"},
		{"malformed end", "2026-08-24", "26.08.2026"},
		{"end before start", "2026-08-26", "2026-08-24"},
		{"span over a year", "2025-01-01", "2026-06-01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SummaryForDateRange(ctx, tc.start, tc.end, shiftcal.Any)
			if !errors.IsValidation(err) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
}

func TestSummaryForDateRangeAllEmpty(t *testing.T) {
	svc := newTestService([]*models.Device{activeDevice("aa:01", "Press 1")}, nil)

	data, err := svc.SummaryForDateRange(context.Background(), "2026-08-24", "2026-08-25", shiftcal.Any)
	if err != nil {
		t.Fatalf("SummaryForDateRange: %v", err)
	}
	if data.Total.ShiftType != models.NoDataShiftType {
		t.Errorf("total shift_type = %q, want %q", data.Total.ShiftType, models.NoDataShiftType)
	}
	if len(data.PerDate) != 2 {
		t.Errorf("per_date rows = %d, want 2", len(data.PerDate))
	}
}

func TestIntervalSeriesFiltersInactiveDevices(t *testing.T) {
	day := time.Date(2026, 8, 25, 9, 0, 0, 0, time.Local)
	readings := []models.Reading{
		reading("aa:01", false, false, true, day),
		reading("aa:01", false, false, true, day.Add(10*time.Minute)),
		reading("bb:02", true, false, false, day),
		reading("bb:02", true, false, false, day.Add(10*time.Minute)),
	}
	devices := []*models.Device{
		activeDevice("aa:01", "Press 1"),
		{MacAddress: "bb:02", DeviceName: "Press 2", Status: models.DeviceInactive},
	}
	svc := newTestService(devices, readings)

	data, err := svc.IntervalSeries(context.Background(), "", "2026-08-25", "")
	if err != nil {
		t.Fatalf("IntervalSeries: %v", err)
	}
	if len(data.Series) != 1 {
		t.Fatalf("series = %d, want only the active device's Run series", len(data.Series))
	}
	if data.Series[0].Name != string(models.StatusRun) {
		t.Errorf("series name = %q, want Run", data.Series[0].Name)
	}
	for _, p := range data.Series[0].Data {
		if strings.Contains(p.X, "Press 2") || strings.Contains(p.X, "bb:02") {
			t.Errorf("inactive device leaked into series: %q", p.X)
		}
	}
	if data.Series[0].Data[0].X != "Press 1" {
		t.Errorf("x label = %q, want device name Press 1", data.Series[0].Data[0].X)
	}
}

func TestIntervalSeriesByDevice(t *testing.T) {
	day := time.Date(2026, 8, 25, 9, 0, 0, 0, time.Local)
	readings := []models.Reading{
		reading("aa:01", false, false, true, day),
		reading("aa:01", false, false, true, day.Add(10*time.Minute)),
		reading("bb:02", true, false, false, day),
		reading("bb:02", true, false, false, day.Add(10*time.Minute)),
	}
	devices := []*models.Device{
		activeDevice("aa:01", "Press 1"),
		activeDevice("bb:02", "Press 2"),
	}
	svc := newTestService(devices, readings)

	data, err := svc.IntervalSeries(context.Background(), "bb:02", "2026-08-25", "")
	if err != nil {
		t.Fatalf("IntervalSeries: %v", err)
	}
	if len(data.Series) != 1 || data.Series[0].Name != string(models.StatusError) {
		t.Fatalf("series = %+v, want a single Error series for bb:02", data.Series)
	}
}
