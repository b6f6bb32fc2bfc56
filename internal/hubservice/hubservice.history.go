// FilePath: internal/hubservice/hubservice.history.go
package hubservice

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lumiguard/andonhub/internal/aggregate"
	"github.com/lumiguard/andonhub/internal/errors"
	"github.com/lumiguard/andonhub/internal/interval"
	"github.com/lumiguard/andonhub/internal/models"
	"github.com/lumiguard/andonhub/internal/shiftcal"
)

const dateLayout = "2006-01-02"

// rangeDays maps the supported range literals to their day count.
var rangeDays = map[string]int{
	"3days":  3,
	"7days":  7,
	"1month": 30,
}

// SummaryForDate computes the availability summary of one logical
// production date, optionally restricted to a shift. A valid date
// with no readings yields the all-zero "No Data" sentinel, not an
// error.
func (s *HubService) SummaryForDate(ctx context.Context, date string, shift shiftcal.Shift) (*models.SummaryData, error) {
	if date == "" {
		return nil, errors.NewValidationError("date parameter is required", nil)
	}

	start, end, err := s.Calendar.ShiftWindow(date, shift)
	if err != nil {
		return nil, errors.NewValidationError("invalid date format, want YYYY-MM-DD", err)
	}

	dateRange := models.DateRange{
		Start: start.Format(time.RFC3339),
		End:   end.Format(time.RFC3339),
		Shift: shiftLabel(shift),
	}

	readings, err := s.Readings.GetWindow(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return &models.SummaryData{
			Total:     models.NoDataSummary(),
			PerDevice: []models.DevicePerformance{},
			PerShift:  []models.ShiftPerformance{},
			Gantt:     []models.GanttSeries{},
			DateRange: dateRange,
		}, nil
	}

	names, _, err := s.deviceIndex(ctx)
	if err != nil {
		return nil, err
	}
	decorate(readings, names)

	res := aggregate.Run(s.Calendar, date, shift, readings)
	return &models.SummaryData{
		Total:     res.TotalSummary(),
		PerDevice: res.PerDevice(),
		PerShift:  res.PerShift(),
		Gantt:     res.Gantt(),
		DateRange: dateRange,
	}, nil
}

// SummaryForRange computes full-day summaries for the trailing window
// ending today and sums them into a grand total. Percentages of the
// total are recomputed after summing, never pre-summed.
func (s *HubService) SummaryForRange(ctx context.Context, rangeName string) (*models.RangeSummaryData, error) {
	days, ok := rangeDays[rangeName]
	if !ok {
		return nil, errors.NewValidationError("unsupported range, want one of 3days, 7days, 1month", nil)
	}

	today := s.now()
	dates := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		dates = append(dates, today.AddDate(0, 0, -i).Format(dateLayout))
	}
	return s.rangeSummary(ctx, dates, shiftcal.Any)
}

// SummaryForDateRange computes full-day (or shift-filtered) summaries
// over an explicit inclusive date span.
func (s *HubService) SummaryForDateRange(ctx context.Context, startDate, endDate string, shift shiftcal.Shift) (*models.RangeSummaryData, error) {
	if startDate == "" || endDate == "" {
		return nil, errors.NewValidationError("start and end parameters are required", nil)
	}
	start, err := time.ParseInLocation(dateLayout, startDate, time.Local)
	if err != nil {
		return nil, errors.NewValidationError("invalid start date, want YYYY-MM-DD", err)
	}
	end, err := time.ParseInLocation(dateLayout, endDate, time.Local)
	if err != nil {
		return nil, errors.NewValidationError("invalid end date, want YYYY-MM-DD", err)
	}
	if end.Before(start) {
		return nil, errors.NewValidationError("end date before start date", nil)
	}
	if end.Sub(start) > 366*24*time.Hour {
		return nil, errors.NewValidationError("date range exceeds one year", nil)
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(dateLayout))
	}
	return s.rangeSummary(ctx, dates, shift)
}

// rangeSummary runs one aggregation pass per date over a bounded
// worker pool and folds the numeric totals into the grand total.
func (s *HubService) rangeSummary(ctx context.Context, dates []string, shift shiftcal.Shift) (*models.RangeSummaryData, error) {
	names, _, err := s.deviceIndex(ctx)
	if err != nil {
		return nil, err
	}

	perDate := make([]models.DatePerformance, len(dates))
	totals := make([]aggregate.Totals, len(dates))
	hasData := make([]bool, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rangeWorkers)
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			start, end, err := s.Calendar.ShiftWindow(date, shift)
			if err != nil {
				return errors.NewValidationError("invalid date format, want YYYY-MM-DD", err)
			}
			readings, err := s.Readings.GetWindow(gctx, start, end)
			if err != nil {
				return err
			}
			if len(readings) == 0 {
				perDate[i] = models.DatePerformance{
					StatusSummary: models.NoDataSummary(),
					Date:          date,
					RedCount:      "0",
				}
				return nil
			}

			decorate(readings, names)
			res := aggregate.Run(s.Calendar, date, shift, readings)
			totals[i] = res.Totals()
			hasData[i] = true
			perDate[i] = models.DatePerformance{
				StatusSummary: res.TotalSummary(),
				Date:          date,
				RedCount:      strconv.Itoa(totals[i].RedCount),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var grand aggregate.Totals
	var any bool
	for i := range totals {
		if hasData[i] {
			grand.Add(totals[i])
			any = true
		}
	}

	total := models.NoDataSummary()
	if any {
		total = aggregate.SummaryFromTotals(grand, "Total")
	}

	return &models.RangeSummaryData{
		Total:   total,
		PerDate: perDate,
		DateRange: models.DateRange{
			Start: dates[0],
			End:   dates[len(dates)-1],
			Shift: shiftLabel(shift),
		},
	}, nil
}

// IntervalSeries flattens the state intervals of active devices into
// status-named timeline series. from/to restrict the window to one
// calendar day (the original dashboard queries one day at a time); an
// empty window means everything up to now.
func (s *HubService) IntervalSeries(ctx context.Context, macAddress, from, to string) (*models.IntervalSeriesData, error) {
	start, end, err := s.seriesWindow(from, to)
	if err != nil {
		return nil, err
	}

	var readings []models.Reading
	if macAddress != "" {
		readings, err = s.Readings.GetWindowByDevice(ctx, macAddress, start, end)
	} else {
		readings, err = s.Readings.GetWindow(ctx, start, end)
	}
	if err != nil {
		return nil, err
	}

	names, active, err := s.deviceIndex(ctx)
	if err != nil {
		return nil, err
	}

	filtered := readings[:0]
	for _, r := range readings {
		if active[r.MacAddress] {
			filtered = append(filtered, r)
		}
	}
	decorate(filtered, names)

	series := aggregate.GanttFromIntervals(interval.BuildAll(s.Calendar, filtered))
	if series == nil {
		series = []models.GanttSeries{}
	}
	return &models.IntervalSeriesData{Series: series}, nil
}

// seriesWindow spans the calendar day of whichever bound was given,
// or all history up to now when neither was.
func (s *HubService) seriesWindow(from, to string) (time.Time, time.Time, error) {
	pick := from
	if pick == "" {
		pick = to
	}
	if pick == "" {
		return time.Unix(0, 0), s.now(), nil
	}

	day, err := time.ParseInLocation(dateLayout, pick, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewValidationError("invalid date format, want YYYY-MM-DD", err)
	}
	return day, day.AddDate(0, 0, 1).Add(-time.Millisecond), nil
}

func shiftLabel(shift shiftcal.Shift) string {
	if shift == shiftcal.Any {
		return "All"
	}
	return string(shift)
}
