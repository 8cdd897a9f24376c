package services

import (
	"time"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/models"
)

// The calendar always renders a fixed 6x7 grid, Sunday-start, row-major.
// Months that would fit in five rows still get a trailing filler week.
const CalendarGridCells = 42

// DailyRecordSummary is the per-day slice of a record that the calendar
// needs. Absence of a summary means no record was logged that day.
type DailyRecordSummary struct {
	Date           time.Time
	SkinCondition  int
	Sleep          int
	Stress         int
	SkincareEffort int
	Memo           string
	EnvPrefCode    string
}

type CalendarDay struct {
	Date            time.Time
	DateString      string
	Day             int
	InMonth         bool
	IsToday         bool
	IsSelected      bool
	HasMenstruation bool
	Summary         *DailyRecordSummary
}

// BuildCalendarGrid merges cycle ranges and daily summaries into the 42 day
// descriptors for the given month. Cycle ranges are clipped to the visible
// month window; an open cycle runs through today. Cycles that miss the
// window entirely are skipped.
func BuildCalendarGrid(
	year int,
	month time.Month,
	cycles []models.CycleLog,
	summaries map[string]DailyRecordSummary,
	selected time.Time,
	today time.Time,
	location *time.Location,
) []CalendarDay {
	monthStart, monthEnd := dateutil.MonthBounds(year, month, location)
	gridStart := monthStart.AddDate(0, 0, -int(monthStart.Weekday()))
	today = dateutil.DateOnly(today)

	menstruationByDate := make(map[string]bool)
	for _, cycle := range cycles {
		start := dateutil.DateOnly(cycle.StartDate)
		end := today
		if cycle.EndDate != nil {
			end = dateutil.DateOnly(*cycle.EndDate)
		}
		clippedStart, clippedEnd, ok := dateutil.ClipRange(start, end, monthStart, monthEnd)
		if !ok {
			continue
		}
		for day := clippedStart; !day.After(clippedEnd); day = day.AddDate(0, 0, 1) {
			menstruationByDate[dateutil.FormatDay(day)] = true
		}
	}

	todayKey := dateutil.FormatDay(today)
	selectedKey := ""
	if !selected.IsZero() {
		selectedKey = dateutil.FormatDay(selected)
	}

	days := make([]CalendarDay, 0, CalendarGridCells)
	for offset := 0; offset < CalendarGridCells; offset++ {
		day := gridStart.AddDate(0, 0, offset)
		key := dateutil.FormatDay(day)

		cell := CalendarDay{
			Date:            day,
			DateString:      key,
			Day:             day.Day(),
			InMonth:         day.Month() == month,
			IsToday:         key == todayKey,
			IsSelected:      key == selectedKey,
			HasMenstruation: menstruationByDate[key],
		}
		if summary, exists := summaries[key]; exists {
			attached := summary
			cell.Summary = &attached
		}
		days = append(days, cell)
	}

	return days
}
