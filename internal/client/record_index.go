package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/models"
	"github.com/quietlotus/hadane/internal/services"
)

// DailyRecordIndex caches the visible month's daily summaries keyed by
// date string. Absence of a key means no record that day.
type DailyRecordIndex struct {
	api      *Client
	log      *zap.Logger
	location *time.Location
	now      func() time.Time
	edits    *EditController
	loads    singleflight.Group

	mu        sync.Mutex
	summaries map[string]services.DailyRecordSummary
}

func NewDailyRecordIndex(api *Client, logger *zap.Logger) *DailyRecordIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyRecordIndex{
		api:       api,
		log:       logger,
		location:  api.Location(),
		now:       api.now,
		edits:     NewEditController(),
		summaries: make(map[string]services.DailyRecordSummary),
	}
}

func (index *DailyRecordIndex) today() time.Time {
	return dateutil.DateAtLocation(index.now(), index.location)
}

// LoadMonth fetches the month's summaries, clipped to today: a month fully
// in the future performs no fetch at all. Duplicate in-flight loads for
// the same month are coalesced. A FetchError degrades to an empty month
// and is logged, because a missing badge beats a broken calendar.
func (index *DailyRecordIndex) LoadMonth(ctx context.Context, year int, month time.Month) error {
	return index.LoadMonthGuarded(ctx, year, month, nil)
}

func (index *DailyRecordIndex) LoadMonthGuarded(ctx context.Context, year int, month time.Month, stillWanted func() bool) error {
	monthStart, monthEnd := dateutil.MonthBounds(year, month, index.location)
	today := index.today()

	if monthStart.After(today) {
		if stillWanted == nil || stillWanted() {
			index.replaceAll(nil)
		}
		return nil
	}

	fetchEnd := dateutil.EarlierOf(monthEnd, today)
	loadKey := fmt.Sprintf("%04d-%02d", year, month)

	result, err, _ := index.loads.Do(loadKey, func() (any, error) {
		return index.api.ListRecords(ctx, monthStart, fetchEnd)
	})

	var records []Record
	if err != nil {
		if !IsFetch(err) {
			return err
		}
		index.log.Warn("month summaries fetch failed, degrading to empty",
			zap.String("month", loadKey), zap.Error(err))
	} else {
		records = result.([]Record)
	}

	if stillWanted != nil && !stillWanted() {
		index.log.Debug("discarding stale month summaries", zap.String("month", loadKey))
		return nil
	}

	index.replaceAll(records)
	return nil
}

func (index *DailyRecordIndex) Get(day time.Time) (services.DailyRecordSummary, bool) {
	index.mu.Lock()
	defer index.mu.Unlock()
	summary, exists := index.summaries[dateutil.FormatDay(day)]
	return summary, exists
}

// Summaries returns a copy of the current date-key map for the grid
// builder.
func (index *DailyRecordIndex) Summaries() map[string]services.DailyRecordSummary {
	index.mu.Lock()
	defer index.mu.Unlock()
	snapshot := make(map[string]services.DailyRecordSummary, len(index.summaries))
	for key, summary := range index.summaries {
		snapshot[key] = summary
	}
	return snapshot
}

// Save upserts the record for a day. The pre-save read decides between
// create and patch; if that read fails it surfaces and blocks the save,
// unlike background reads.
func (index *DailyRecordIndex) Save(ctx context.Context, input RecordInput) error {
	day := dateutil.DateOnly(input.Date)
	input.Date = day

	if err := index.validateInput(input); err != nil {
		return err
	}

	existing, err := index.api.GetRecord(ctx, day)
	if err != nil {
		return err
	}

	key := dateutil.FormatDay(day)
	return index.edits.Do(ctx, Edit{
		Entity: "record:" + key,
		Apply: func() func() {
			previous, existed := index.Get(day)
			index.put(key, input.summary())
			return func() {
				if existed {
					index.put(key, previous)
				} else {
					index.remove(key)
				}
			}
		},
		Send: func(ctx context.Context) error {
			if existing == nil {
				_, err := index.api.CreateRecord(ctx, input)
				return err
			}
			_, err := index.api.UpdateRecord(ctx, day, input)
			return err
		},
		Confirm: func(ctx context.Context) error {
			return index.refreshDay(ctx, day)
		},
	})
}

// Delete removes the day's record, optimistically clearing the summary.
func (index *DailyRecordIndex) Delete(ctx context.Context, day time.Time) error {
	day = dateutil.DateOnly(day)
	if err := services.ValidateNotFuture(day, index.today()); err != nil {
		return &ValidationError{Message: "date cannot be in the future", Err: err}
	}

	key := dateutil.FormatDay(day)
	return index.edits.Do(ctx, Edit{
		Entity: "record:" + key,
		Apply: func() func() {
			previous, existed := index.Get(day)
			index.remove(key)
			return func() {
				if existed {
					index.put(key, previous)
				}
			}
		},
		Send: func(ctx context.Context) error {
			return index.api.DeleteRecord(ctx, day)
		},
		Confirm: func(ctx context.Context) error {
			return index.refreshDay(ctx, day)
		},
	})
}

// EditInFlight reports whether the day's record has an outstanding write.
func (index *DailyRecordIndex) EditInFlight(day time.Time) bool {
	return index.edits.InFlight("record:" + dateutil.FormatDay(day))
}

func (index *DailyRecordIndex) validateInput(input RecordInput) error {
	if err := services.ValidateNotFuture(input.Date, index.today()); err != nil {
		return &ValidationError{Message: "date cannot be in the future", Err: err}
	}
	for _, score := range []struct {
		name  string
		value int
	}{
		{"skin condition", input.SkinCondition},
		{"sleep", input.Sleep},
		{"stress", input.Stress},
		{"skincare effort", input.SkincareEffort},
	} {
		if !models.ValidScore(score.value) {
			return &ValidationError{Message: score.name + " score must be between 1 and 5"}
		}
	}
	if len(input.Memo) > models.MemoMaxLength {
		return &ValidationError{Message: "memo is too long"}
	}
	return nil
}

// refreshDay replaces the day's optimistic summary with the service's
// version. The write already succeeded, so a failed confirming read keeps
// the optimistic value and is only logged.
func (index *DailyRecordIndex) refreshDay(ctx context.Context, day time.Time) error {
	record, err := index.api.GetRecord(ctx, day)
	if err != nil {
		if IsFetch(err) {
			index.log.Warn("confirming record fetch failed, keeping optimistic value",
				zap.String("date", dateutil.FormatDay(day)), zap.Error(err))
			return nil
		}
		return err
	}

	key := dateutil.FormatDay(day)
	if record == nil {
		index.remove(key)
		return nil
	}
	index.put(key, record.Summary())
	return nil
}

func (index *DailyRecordIndex) replaceAll(records []Record) {
	summaries := make(map[string]services.DailyRecordSummary, len(records))
	for _, record := range records {
		summaries[dateutil.FormatDay(record.Date)] = record.Summary()
	}
	index.mu.Lock()
	defer index.mu.Unlock()
	index.summaries = summaries
}

func (index *DailyRecordIndex) put(key string, summary services.DailyRecordSummary) {
	index.mu.Lock()
	defer index.mu.Unlock()
	index.summaries[key] = summary
}

func (index *DailyRecordIndex) remove(key string) {
	index.mu.Lock()
	defer index.mu.Unlock()
	delete(index.summaries, key)
}
