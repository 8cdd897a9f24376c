package services

import (
	"errors"
	"sort"
	"time"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/models"
)

var (
	ErrEndBeforeStart     = errors.New("end date precedes start date")
	ErrFutureDate         = errors.New("date is in the future")
	ErrOpenCycleExists    = errors.New("an open cycle already exists")
	ErrNoOpenCycle        = errors.New("no open cycle to close")
	ErrMultipleOpenCycles = errors.New("multiple open cycles")
	ErrOverlapsPrevious   = errors.New("start date must be after the previous cycle's end")
	ErrOverlapsNext       = errors.New("end date must be before the next cycle's start")
	ErrOpenCycleNotLatest = errors.New("an open cycle must be the most recent cycle")
)

// OpenCycle returns the open cycle in the list, if any. Returns
// ErrMultipleOpenCycles when the at-most-one invariant is broken.
func OpenCycle(cycles []models.CycleLog) (models.CycleLog, bool, error) {
	var open models.CycleLog
	found := false
	for _, cycle := range cycles {
		if !cycle.Open() {
			continue
		}
		if found {
			return models.CycleLog{}, false, ErrMultipleOpenCycles
		}
		open = cycle
		found = true
	}
	return open, found, nil
}

func ValidateNotFuture(day, today time.Time) error {
	if dateutil.DateOnly(day).After(dateutil.DateOnly(today)) {
		return ErrFutureDate
	}
	return nil
}

// ValidateCycleDates checks a candidate [start, end] range against the
// user's other cycles. Rules: the start must fall strictly after the
// previous cycle's end; an open range must be the latest cycle; a closed
// range must end strictly before the next cycle's start. excludeID skips
// the cycle being edited.
func ValidateCycleDates(cycles []models.CycleLog, start time.Time, end *time.Time, excludeID string) error {
	start = dateutil.DateOnly(start)
	if end != nil && dateutil.DateOnly(*end).Before(start) {
		return ErrEndBeforeStart
	}

	ordered := make([]models.CycleLog, 0, len(cycles))
	for _, cycle := range cycles {
		if cycle.ID == excludeID {
			continue
		}
		ordered = append(ordered, cycle)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].StartDate.Before(ordered[j].StartDate)
	})

	var previous, next *models.CycleLog
	for index := range ordered {
		cycleStart := dateutil.DateOnly(ordered[index].StartDate)
		if cycleStart.Before(start) {
			previous = &ordered[index]
			continue
		}
		if cycleStart.After(start) {
			next = &ordered[index]
			break
		}
	}

	if previous != nil {
		// An open previous cycle means integrity is already broken;
		// refuse edits that would build on top of it.
		if previous.EndDate == nil {
			return ErrOpenCycleExists
		}
		if !start.After(dateutil.DateOnly(*previous.EndDate)) {
			return ErrOverlapsPrevious
		}
	}

	if end == nil {
		if next != nil {
			return ErrOpenCycleNotLatest
		}
		return nil
	}

	if next != nil && !dateutil.DateOnly(*end).Before(dateutil.DateOnly(next.StartDate)) {
		return ErrOverlapsNext
	}

	return nil
}
