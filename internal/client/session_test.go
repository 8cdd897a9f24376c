package client

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/services"
)

func newTestSession(doer Doer) *CalendarSession {
	api := newTestClient(doer)
	return NewCalendarSession(NewCycleLogStore(api, nil), NewDailyRecordIndex(api, nil), nil)
}

func gridCell(t *testing.T, grid []services.CalendarDay, date string) services.CalendarDay {
	t.Helper()
	for _, day := range grid {
		if day.DateString == date {
			return day
		}
	}
	t.Fatalf("no cell for %s", date)
	return services.CalendarDay{}
}

func TestLoadVisibleMonthPopulatesGrid(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{}
	session := newTestSession(doer)
	defer session.Close()

	doer.enqueue(http.StatusOK, cycleListJSON(openCycleJSON("c1", "2024-03-01")))
	doer.enqueue(http.StatusOK, recordListJSON(recordJSON("r1", "2024-03-10", 5)))

	if err := session.LoadVisibleMonth(context.Background()); err != nil {
		t.Fatalf("LoadVisibleMonth returned error: %v", err)
	}

	grid := session.Grid()
	if len(grid) != services.CalendarGridCells {
		t.Fatalf("grid has %d cells, want %d", len(grid), services.CalendarGridCells)
	}

	recorded := gridCell(t, grid, "2024-03-10")
	if recorded.Summary == nil {
		t.Fatal("recorded day lost its summary")
	}
	if !recorded.HasMenstruation {
		t.Fatal("day inside the open cycle not flagged")
	}
	// The open cycle extends to today, not beyond.
	if !gridCell(t, grid, "2024-03-15").HasMenstruation {
		t.Fatal("today not flagged despite the open cycle")
	}
	if gridCell(t, grid, "2024-03-16").HasMenstruation {
		t.Fatal("day after today flagged by the open cycle")
	}
	if !gridCell(t, grid, "2024-03-15").IsToday {
		t.Fatal("today cell not marked")
	}
}

func TestLoadVisibleMonthDiscardsStaleResponse(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{}
	session := newTestSession(doer)
	defer session.Close()

	// The user flips to February while the March summaries are still on
	// the wire; the landed result must not clobber the new view.
	doer.onRequest = func(request *http.Request) {
		if strings.HasPrefix(request.URL.Path, "/records") {
			session.SetMonth(2024, time.February)
		}
	}
	doer.enqueue(http.StatusOK, cycleListJSON())
	doer.enqueue(http.StatusOK, recordListJSON(recordJSON("r1", "2024-03-10", 5)))

	if err := session.LoadVisibleMonth(context.Background()); err != nil {
		t.Fatalf("LoadVisibleMonth returned error: %v", err)
	}

	grid := session.Grid()
	if cell := gridCell(t, grid, "2024-02-10"); cell.Summary != nil {
		t.Fatalf("stale March response leaked into February: %+v", cell.Summary)
	}
	for _, day := range grid {
		if day.Summary != nil {
			t.Fatalf("stale summary committed for %s", day.DateString)
		}
	}
}

func TestLoadVisibleMonthDiscardsAfterClose(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{}
	session := newTestSession(doer)

	doer.onRequest = func(request *http.Request) {
		if strings.HasPrefix(request.URL.Path, "/cycles") {
			session.Close()
		}
	}
	doer.enqueue(http.StatusOK, cycleListJSON(openCycleJSON("c1", "2024-03-01")))
	doer.enqueue(http.StatusOK, recordListJSON(recordJSON("r1", "2024-03-10", 5)))

	if err := session.LoadVisibleMonth(context.Background()); err != nil {
		t.Fatalf("LoadVisibleMonth returned error: %v", err)
	}
	for _, day := range session.Grid() {
		if day.HasMenstruation || day.Summary != nil {
			t.Fatalf("result committed after close at %s", day.DateString)
		}
	}

	if err := session.LoadVisibleMonth(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("got %v, want ErrSessionClosed", err)
	}
}

func TestSortChangeKeepsPendingLoadCurrent(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{}
	session := newTestSession(doer)
	defer session.Close()

	state, err := services.SortBy(services.MetricSleep, services.DirectionGood)
	if err != nil {
		t.Fatalf("SortBy returned error: %v", err)
	}
	doer.onRequest = func(request *http.Request) {
		if strings.HasPrefix(request.URL.Path, "/records") {
			session.SetSort(state)
		}
	}
	doer.enqueue(http.StatusOK, cycleListJSON())
	doer.enqueue(http.StatusOK, recordListJSON(recordJSON("r1", "2024-03-10", 5)))

	if err := session.LoadVisibleMonth(context.Background()); err != nil {
		t.Fatalf("LoadVisibleMonth returned error: %v", err)
	}

	cell := gridCell(t, session.Grid(), "2024-03-10")
	if cell.Summary == nil {
		t.Fatal("sort change invalidated the in-flight load; it must not")
	}
	visible := session.DayVisibility(cell)
	if !visible.Sleep || visible.Stress || visible.Skincare {
		t.Fatalf("visibility = %+v, want only the sleep glyph", visible)
	}
}

func TestSaveRecordSignalsRefreshForVisibleMonth(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{}
	session := newTestSession(doer)
	defer session.Close()

	doer.enqueue(http.StatusNotFound, detailJSON("record not found for this date"))
	doer.enqueue(http.StatusCreated, recordJSON("r1", "2024-03-10", 5))
	doer.enqueue(http.StatusOK, recordJSON("r1", "2024-03-10", 5))

	refresh, err := session.SaveRecord(context.Background(), sampleInput(t, "2024-03-10"))
	if err != nil {
		t.Fatalf("SaveRecord returned error: %v", err)
	}
	if !refresh {
		t.Fatal("save in the visible month must request a grid refresh")
	}

	doer.enqueue(http.StatusNotFound, detailJSON("record not found for this date"))
	doer.enqueue(http.StatusCreated, recordJSON("r2", "2024-02-10", 5))
	doer.enqueue(http.StatusOK, recordJSON("r2", "2024-02-10", 5))

	refresh, err = session.SaveRecord(context.Background(), sampleInput(t, "2024-02-10"))
	if err != nil {
		t.Fatalf("SaveRecord returned error: %v", err)
	}
	if refresh {
		t.Fatal("save outside the visible month must not request a refresh")
	}
}

func TestClosedSessionRejectsMutations(t *testing.T) {
	t.Parallel()

	doer := &scriptedDoer{}
	session := newTestSession(doer)
	session.Close()

	if _, err := session.SaveRecord(context.Background(), sampleInput(t, "2024-03-10")); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("SaveRecord: got %v, want ErrSessionClosed", err)
	}
	if _, err := session.DeleteRecord(context.Background(), mustDay(t, "2024-03-10")); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("DeleteRecord: got %v, want ErrSessionClosed", err)
	}
	if err := session.StartCycle(context.Background(), mustDay(t, "2024-03-10")); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("StartCycle: got %v, want ErrSessionClosed", err)
	}
	if err := session.EndCycle(context.Background(), mustDay(t, "2024-03-10")); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("EndCycle: got %v, want ErrSessionClosed", err)
	}
	if calls := doer.calls(); len(calls) != 0 {
		t.Fatalf("%d requests sent on a closed session", len(calls))
	}
}

func TestSessionStartsOnCurrentMonth(t *testing.T) {
	t.Parallel()

	session := newTestSession(&scriptedDoer{})
	defer session.Close()

	year, month := session.Month()
	today := dateutil.DateAtLocation(testClock(), time.UTC)
	if year != today.Year() || month != today.Month() {
		t.Fatalf("initial month = %d-%s, want today's", year, month)
	}
}
