// FilePath: internal/shiftcal/shiftcal.go

// Package shiftcal maps instants to logical production dates and
// shifts, and computes planned working durations.
//
// A logical production day starts at the configured day-start hour
// (07:00 by default), so any instant before that hour belongs to the
// previous calendar date. Shifts split the day by clock hour only:
// Morning covers [07:00, 19:00), Night covers the rest. Planned time
// starts from an 8h base per shift and stretches when overtime
// activity is observed; Fridays cap the Morning overtime extension.
package shiftcal

import (
	"fmt"
	"strings"
	"time"
)

// Shift identifies one half of a logical production day.
type Shift string

const (
	Morning Shift = "Morning"
	Night   Shift = "Night"
	// Any means no shift filter: both halves of the day.
	Any Shift = ""
)

const dateLayout = "2006-01-02"

// Config carries the shift boundaries and the overtime detection
// windows. The overtime hours are observed heuristics of the plant
// floor, so they are configuration rather than constants.
type Config struct {
	DayStartHour    int     `mapstructure:"day_start_hour"`
	MorningEndHour  int     `mapstructure:"morning_end_hour"`
	BaseHours       float64 `mapstructure:"base_hours"`
	OvertimeHours   float64 `mapstructure:"overtime_hours"`
	FridayOTHours   float64 `mapstructure:"friday_overtime_hours"`
	MorningOTHour   int     `mapstructure:"morning_overtime_hour"`
	NightOTFromHour int     `mapstructure:"night_overtime_from_hour"`
	NightOTToHour   int     `mapstructure:"night_overtime_to_hour"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DayStartHour:    7,
		MorningEndHour:  19,
		BaseHours:       8,
		OvertimeHours:   10.5,
		FridayOTHours:   10,
		MorningOTHour:   16,
		NightOTFromHour: 4,
		NightOTToHour:   7,
	}
}

// Calendar answers shift and planned-time questions. All methods are
// pure; the zero value is not usable, construct it with New.
type Calendar struct {
	cfg Config
}

// New builds a Calendar from cfg.
func New(cfg Config) Calendar {
	return Calendar{cfg: cfg}
}

// Config returns the calendar configuration.
func (c Calendar) Config() Config {
	return c.cfg
}

// LogicalDate returns the production date of t as YYYY-MM-DD. Instants
// before the day-start hour belong to the previous calendar date.
func (c Calendar) LogicalDate(t time.Time) string {
	if t.Hour() < c.cfg.DayStartHour {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format(dateLayout)
}

// ShiftOf returns the shift a timestamp falls into, by clock hour only.
// This is independent of the logical-date rollover.
func (c Calendar) ShiftOf(t time.Time) Shift {
	h := t.Hour()
	if h >= c.cfg.DayStartHour && h < c.cfg.MorningEndHour {
		return Morning
	}
	return Night
}

// HasOvertime reports whether the observed timestamps indicate an
// extended shift: a Morning reading at or after the morning overtime
// hour, or a Night reading inside the night overtime window.
func (c Calendar) HasOvertime(timestamps []time.Time, shift Shift) bool {
	for _, t := range timestamps {
		h := t.Hour()
		switch shift {
		case Morning:
			if h >= c.cfg.MorningOTHour {
				return true
			}
		case Night:
			if h >= c.cfg.NightOTFromHour && h < c.cfg.NightOTToHour {
				return true
			}
		}
	}
	return false
}

// PlannedTime is a planned working duration with a human label.
type PlannedTime struct {
	Seconds float64
	Label   string
}

// PlannedTime computes the planned duration for a shift on a logical
// date given the observed timestamps of that shift. With Shift == Any
// the timestamps are partitioned into morning- and night-hour subsets,
// each half is computed independently, and the results are summed.
// Friday (of the logical date, not the raw timestamp) caps the Morning
// overtime at the reduced Friday value; Night has no Friday rule.
func (c Calendar) PlannedTime(shift Shift, date string, timestamps []time.Time) PlannedTime {
	switch shift {
	case Morning, Night:
		return c.plannedHalf(shift, date, timestamps)
	default:
		morning, night := c.partition(timestamps)
		m := c.plannedHalf(Morning, date, morning)
		n := c.plannedHalf(Night, date, night)
		return PlannedTime{
			Seconds: m.Seconds + n.Seconds,
			Label:   fmt.Sprintf("Morning %s / Night %s", m.Label, n.Label),
		}
	}
}

func (c Calendar) plannedHalf(shift Shift, date string, timestamps []time.Time) PlannedTime {
	overtime := c.HasOvertime(timestamps, shift)
	hours := c.cfg.BaseHours
	label := "Normal"

	if overtime {
		hours = c.cfg.OvertimeHours
		label = "Overtime"
		if shift == Morning && isFriday(date) {
			hours = c.cfg.FridayOTHours
			label = "Friday Overtime"
		}
	}

	return PlannedTime{
		Seconds: hours * 3600,
		Label:   fmt.Sprintf("%s (%sh)", label, trimHours(hours)),
	}
}

func (c Calendar) partition(timestamps []time.Time) (morning, night []time.Time) {
	for _, t := range timestamps {
		if c.ShiftOf(t) == Morning {
			morning = append(morning, t)
		} else {
			night = append(night, t)
		}
	}
	return morning, night
}

// DayWindow returns the [start, end) span of the logical day: the
// day-start hour of date up to the same hour the next day.
func (c Calendar) DayWindow(date string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	start := d.Add(time.Duration(c.cfg.DayStartHour) * time.Hour)
	return start, start.AddDate(0, 0, 1), nil
}

// ShiftWindow returns the span of one shift of the logical date. The
// Night window rolls past midnight into the next calendar day. With
// Any it degrades to DayWindow.
func (c Calendar) ShiftWindow(date string, shift Shift) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	switch shift {
	case Morning:
		start := d.Add(time.Duration(c.cfg.DayStartHour) * time.Hour)
		end := d.Add(time.Duration(c.cfg.MorningEndHour) * time.Hour)
		return start, end, nil
	case Night:
		start := d.Add(time.Duration(c.cfg.MorningEndHour) * time.Hour)
		end := d.AddDate(0, 0, 1).Add(time.Duration(c.cfg.DayStartHour) * time.Hour)
		return start, end, nil
	default:
		return c.DayWindow(date)
	}
}

// ParseShift matches a query-string shift value case-insensitively.
// Empty input means no filter.
func ParseShift(s string) (Shift, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Any, nil
	case "morning":
		return Morning, nil
	case "night":
		return Night, nil
	default:
		return Any, fmt.Errorf("unsupported shift %q", s)
	}
}

func isFriday(date string) bool {
	d, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Friday
}

// trimHours renders 8 as "8" and 10.5 as "10.5".
func trimHours(h float64) string {
	s := fmt.Sprintf("%g", h)
	return s
}
