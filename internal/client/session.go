package client

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/services"
)

// CalendarSession is the view model for one calendar screen: it owns the
// visible month, the selected day and the sort filter, and coordinates the
// stores. Loads triggered before a view-state change are discarded via the
// generation counter instead of clobbering the newer state.
type CalendarSession struct {
	cycles   *CycleLogStore
	records  *DailyRecordIndex
	log      *zap.Logger
	location *time.Location
	now      func() time.Time

	generation Generation

	mu       sync.Mutex
	year     int
	month    time.Month
	selected time.Time
	sort     services.SortState
	closed   bool
}

func NewCalendarSession(cycles *CycleLogStore, records *DailyRecordIndex, logger *zap.Logger) *CalendarSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	session := &CalendarSession{
		cycles:   cycles,
		records:  records,
		log:      logger,
		location: cycles.location,
		now:      cycles.now,
		sort:     services.SortNone(),
	}
	today := dateutil.DateAtLocation(session.now(), session.location)
	session.year, session.month = today.Year(), today.Month()
	return session
}

func (session *CalendarSession) Month() (int, time.Month) {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.year, session.month
}

// SetMonth navigates the visible month and invalidates in-flight loads.
func (session *CalendarSession) SetMonth(year int, month time.Month) {
	session.mu.Lock()
	session.year, session.month = year, month
	session.mu.Unlock()
	session.generation.Bump()
}

// SetSelected changes the selected day; a pending load for the previous
// selection context is no longer wanted.
func (session *CalendarSession) SetSelected(day time.Time) {
	session.mu.Lock()
	session.selected = dateutil.DateOnly(day)
	session.mu.Unlock()
	session.generation.Bump()
}

func (session *CalendarSession) Selected() time.Time {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.selected
}

// SetSort only changes the pure filter; nothing is fetched and nothing
// becomes stale.
func (session *CalendarSession) SetSort(state services.SortState) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.sort = state
}

func (session *CalendarSession) Sort() services.SortState {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.sort
}

// Close invalidates the session; any load still in flight discards its
// result when it lands.
func (session *CalendarSession) Close() {
	session.mu.Lock()
	session.closed = true
	session.mu.Unlock()
	session.generation.Bump()
}

func (session *CalendarSession) isClosed() bool {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.closed
}

// LoadVisibleMonth fetches the cycle list and the month's summaries for
// the current view state. Results landing after the month changed or the
// session closed are dropped. Background fetch failures have already been
// degraded to empty inside the stores.
func (session *CalendarSession) LoadVisibleMonth(ctx context.Context) error {
	if session.isClosed() {
		return ErrSessionClosed
	}

	token := session.generation.Current()
	year, month := session.Month()
	stillWanted := func() bool {
		if session.isClosed() || !session.generation.StillCurrent(token) {
			return false
		}
		currentYear, currentMonth := session.Month()
		return currentYear == year && currentMonth == month
	}

	if err := session.cycles.RefreshGuarded(ctx, DefaultCycleListLimit, stillWanted); err != nil {
		return err
	}
	return session.records.LoadMonthGuarded(ctx, year, month, stillWanted)
}

// Grid builds the 42 day descriptors for the current view state from the
// store snapshots.
func (session *CalendarSession) Grid() []services.CalendarDay {
	session.mu.Lock()
	year, month, selected := session.year, session.month, session.selected
	session.mu.Unlock()

	today := dateutil.DateAtLocation(session.now(), session.location)
	return services.BuildCalendarGrid(year, month, session.cycles.Cycles(), session.records.Summaries(), selected, today, session.location)
}

// DayVisibility applies the current sort filter to one day cell.
func (session *CalendarSession) DayVisibility(day services.CalendarDay) services.MetricVisibility {
	return services.VisibleMetrics(day.Summary, session.Sort())
}

// SaveRecord runs the modal save flow and reports whether the visible
// month must rebuild its grid, as an explicit return rather than a
// broadcast.
func (session *CalendarSession) SaveRecord(ctx context.Context, input RecordInput) (bool, error) {
	if session.isClosed() {
		return false, ErrSessionClosed
	}
	if err := session.records.Save(ctx, input); err != nil {
		return false, err
	}
	return session.inVisibleMonth(input.Date), nil
}

// DeleteRecord removes the selected day's record; same refresh contract as
// SaveRecord.
func (session *CalendarSession) DeleteRecord(ctx context.Context, day time.Time) (bool, error) {
	if session.isClosed() {
		return false, ErrSessionClosed
	}
	if err := session.records.Delete(ctx, day); err != nil {
		return false, err
	}
	return session.inVisibleMonth(day), nil
}

// StartCycle, EndCycle and the patch variants surface the store
// operations at the session level; the confirming refresh inside the
// store already renewed the snapshot, so the grid only needs rebuilding.
func (session *CalendarSession) StartCycle(ctx context.Context, startDate time.Time) error {
	if session.isClosed() {
		return ErrSessionClosed
	}
	return session.cycles.Start(ctx, startDate)
}

func (session *CalendarSession) EndCycle(ctx context.Context, endDate time.Time) error {
	if session.isClosed() {
		return ErrSessionClosed
	}
	return session.cycles.End(ctx, endDate)
}

func (session *CalendarSession) PatchCycleStart(ctx context.Context, cycleID string, newStart time.Time) error {
	if session.isClosed() {
		return ErrSessionClosed
	}
	return session.cycles.PatchStart(ctx, cycleID, newStart)
}

func (session *CalendarSession) PatchClosedCycle(ctx context.Context, cycleID string, startDate, endDate *time.Time) error {
	if session.isClosed() {
		return ErrSessionClosed
	}
	return session.cycles.PatchClosed(ctx, cycleID, startDate, endDate)
}

func (session *CalendarSession) inVisibleMonth(day time.Time) bool {
	year, month := session.Month()
	monthStart, monthEnd := dateutil.MonthBounds(year, month, session.location)
	return dateutil.BetweenInclusive(day, monthStart, monthEnd)
}
