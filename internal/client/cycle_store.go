package client

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/models"
	"github.com/quietlotus/hadane/internal/services"
)

const DefaultCycleListLimit = 12

// Entity key for edits touching the open cycle (start/end); history edits
// key on the cycle id so they do not block each other.
const entityOpenCycle = "cycle:open"

// CycleLogStore holds a short-lived snapshot of the user's cycle list and
// enforces the open-cycle preconditions locally. The service stays the
// single writer of truth: the store never fabricates an open or closed
// state, every successful mutation is followed by a confirming refresh.
type CycleLogStore struct {
	api      *Client
	log      *zap.Logger
	location *time.Location
	now      func() time.Time
	edits    *EditController

	mu     sync.Mutex
	cycles []models.CycleLog
}

func NewCycleLogStore(api *Client, logger *zap.Logger) *CycleLogStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CycleLogStore{
		api:      api,
		log:      logger,
		location: api.Location(),
		now:      api.now,
		edits:    NewEditController(),
	}
}

func (store *CycleLogStore) today() time.Time {
	return dateutil.DateAtLocation(store.now(), store.location)
}

// Refresh replaces the snapshot with a fresh list, most recent start
// first. A FetchError degrades to an empty snapshot: the calendar loses
// its badges but never crashes on a failed background read.
func (store *CycleLogStore) Refresh(ctx context.Context, limit int) error {
	return store.RefreshGuarded(ctx, limit, nil)
}

// RefreshGuarded is Refresh with a stale-response guard: when stillWanted
// reports false after the fetch lands, the result is discarded instead of
// committed.
func (store *CycleLogStore) RefreshGuarded(ctx context.Context, limit int, stillWanted func() bool) error {
	if limit <= 0 {
		limit = DefaultCycleListLimit
	}

	cycles, err := store.api.ListCycles(ctx, limit)
	if err != nil {
		if !IsFetch(err) {
			return err
		}
		store.log.Warn("cycle list fetch failed, degrading to empty", zap.Error(err))
		cycles = nil
	}

	if stillWanted != nil && !stillWanted() {
		store.log.Debug("discarding stale cycle list response")
		return nil
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		return cycles[i].StartDate.After(cycles[j].StartDate)
	})
	store.replace(cycles)
	return nil
}

// Cycles returns the current snapshot, most recent start first.
func (store *CycleLogStore) Cycles() []models.CycleLog {
	store.mu.Lock()
	defer store.mu.Unlock()
	snapshot := make([]models.CycleLog, len(store.cycles))
	copy(snapshot, store.cycles)
	return snapshot
}

// Open returns the open cycle, if any. A snapshot with more than one open
// cycle is server-side corruption; the newest one wins and the state is
// logged so the conflict surfaces on the next mutation.
func (store *CycleLogStore) Open() (models.CycleLog, bool) {
	cycles := store.Cycles()
	open, found, err := services.OpenCycle(cycles)
	if err == nil {
		return open, found
	}
	if errors.Is(err, services.ErrMultipleOpenCycles) {
		store.log.Warn("snapshot has multiple open cycles")
		for _, cycle := range cycles {
			if cycle.Open() {
				return cycle, true
			}
		}
	}
	return models.CycleLog{}, false
}

// Start opens a new cycle. Preconditions: no open cycle, start not in the
// future. The speculative row is rolled back verbatim if the service
// rejects the create.
func (store *CycleLogStore) Start(ctx context.Context, startDate time.Time) error {
	startDate = dateutil.DateOnly(startDate)

	if err := services.ValidateNotFuture(startDate, store.today()); err != nil {
		return &ValidationError{Message: "start date cannot be in the future", Err: err}
	}
	if _, exists := store.Open(); exists {
		return &ValidationError{Message: "the previous cycle has no end date yet", Err: services.ErrOpenCycleExists}
	}

	speculative := models.CycleLog{ID: "pending-" + uuid.NewString(), StartDate: startDate}

	return store.edits.Do(ctx, Edit{
		Entity: entityOpenCycle,
		Apply: func() func() {
			previous := store.Cycles()
			store.replace(append([]models.CycleLog{speculative}, previous...))
			return func() { store.replace(previous) }
		},
		Send: func(ctx context.Context) error {
			_, err := store.api.CreateCycle(ctx, startDate)
			return err
		},
		Confirm: store.confirmRefresh,
	})
}

// PatchStart moves the start date of the currently open cycle.
func (store *CycleLogStore) PatchStart(ctx context.Context, cycleID string, newStart time.Time) error {
	newStart = dateutil.DateOnly(newStart)

	open, exists := store.Open()
	if !exists || open.ID != cycleID {
		return &ValidationError{Message: "only the open cycle's start date can be edited here", Err: services.ErrNoOpenCycle}
	}
	if err := services.ValidateNotFuture(newStart, store.today()); err != nil {
		return &ValidationError{Message: "start date cannot be in the future", Err: err}
	}
	if open.EndDate != nil && newStart.After(dateutil.DateOnly(*open.EndDate)) {
		return &ValidationError{Message: "start date must not pass the recorded end date", Err: services.ErrEndBeforeStart}
	}

	start := newStart
	return store.edits.Do(ctx, Edit{
		Entity: "cycle:" + cycleID,
		Apply:  store.applyCycleDates(cycleID, &start, nil),
		Send: func(ctx context.Context) error {
			_, err := store.api.UpdateCycle(ctx, cycleID, &start, nil)
			return err
		},
		Confirm: store.confirmRefresh,
	})
}

// End closes the currently open cycle.
func (store *CycleLogStore) End(ctx context.Context, endDate time.Time) error {
	endDate = dateutil.DateOnly(endDate)

	open, exists := store.Open()
	if !exists {
		return &ValidationError{Message: "there is no cycle to end", Err: services.ErrNoOpenCycle}
	}
	if err := services.ValidateNotFuture(endDate, store.today()); err != nil {
		return &ValidationError{Message: "end date cannot be in the future", Err: err}
	}
	if endDate.Before(dateutil.DateOnly(open.StartDate)) {
		return &ValidationError{Message: "end date must be on or after the start date", Err: services.ErrEndBeforeStart}
	}

	end := endDate
	return store.edits.Do(ctx, Edit{
		Entity: entityOpenCycle,
		Apply:  store.applyCycleDates(open.ID, nil, &end),
		Send: func(ctx context.Context) error {
			_, err := store.api.CloseCycle(ctx, end)
			return err
		},
		Confirm: store.confirmRefresh,
	})
}

// PatchClosed edits the dates of an already-closed cycle (history edits).
func (store *CycleLogStore) PatchClosed(ctx context.Context, cycleID string, startDate, endDate *time.Time) error {
	target, found := store.find(cycleID)
	if !found {
		return &ValidationError{Message: "unknown cycle"}
	}
	if target.Open() {
		return &ValidationError{Message: "the open cycle is edited through start/end", Err: services.ErrOpenCycleExists}
	}
	if startDate == nil && endDate == nil {
		return &ValidationError{Message: "nothing to update"}
	}

	today := store.today()
	effectiveStart := dateutil.DateOnly(target.StartDate)
	if startDate != nil {
		effectiveStart = dateutil.DateOnly(*startDate)
		startDate = &effectiveStart
	}
	effectiveEnd := dateutil.DateOnly(*target.EndDate)
	if endDate != nil {
		effectiveEnd = dateutil.DateOnly(*endDate)
		endDate = &effectiveEnd
	}

	if err := services.ValidateNotFuture(effectiveStart, today); err != nil {
		return &ValidationError{Message: "start date cannot be in the future", Err: err}
	}
	if err := services.ValidateNotFuture(effectiveEnd, today); err != nil {
		return &ValidationError{Message: "end date cannot be in the future", Err: err}
	}
	if effectiveEnd.Before(effectiveStart) {
		return &ValidationError{Message: "end date must be on or after the start date", Err: services.ErrEndBeforeStart}
	}

	return store.edits.Do(ctx, Edit{
		Entity: "cycle:" + cycleID,
		Apply:  store.applyCycleDates(cycleID, startDate, endDate),
		Send: func(ctx context.Context) error {
			_, err := store.api.UpdateCycle(ctx, cycleID, startDate, endDate)
			return err
		},
		Confirm: store.confirmRefresh,
	})
}

// EditInFlight reports whether a mutation on the open cycle is pending,
// for disabling the start/end controls.
func (store *CycleLogStore) EditInFlight() bool {
	return store.edits.InFlight(entityOpenCycle)
}

func (store *CycleLogStore) applyCycleDates(cycleID string, startDate, endDate *time.Time) func() func() {
	return func() func() {
		previous := store.Cycles()
		updated := make([]models.CycleLog, len(previous))
		copy(updated, previous)
		for index := range updated {
			if updated[index].ID != cycleID {
				continue
			}
			if startDate != nil {
				updated[index].StartDate = *startDate
			}
			if endDate != nil {
				end := *endDate
				updated[index].EndDate = &end
			}
		}
		store.replace(updated)
		return func() { store.replace(previous) }
	}
}

// confirmRefresh absorbs server-side normalization after a successful
// write. If the confirming fetch itself fails the write still stands, so
// the degraded (possibly empty) snapshot is logged, not surfaced.
func (store *CycleLogStore) confirmRefresh(ctx context.Context) error {
	return store.Refresh(ctx, DefaultCycleListLimit)
}

func (store *CycleLogStore) find(cycleID string) (models.CycleLog, bool) {
	for _, cycle := range store.Cycles() {
		if cycle.ID == cycleID {
			return cycle, true
		}
	}
	return models.CycleLog{}, false
}

func (store *CycleLogStore) replace(cycles []models.CycleLog) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.cycles = cycles
}
