package db

import (
	"testing"
	"time"

	"github.com/quietlotus/hadane/internal/models"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	database, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	return NewRepositories(database)
}

func utcDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestCycleRepositoryListsAndFinds(t *testing.T) {
	t.Parallel()
	repos := newTestRepos(t)

	end := utcDay(2024, time.February, 6)
	closed := models.CycleLog{UserID: "user-1", StartDate: utcDay(2024, time.February, 1), EndDate: &end}
	open := models.CycleLog{UserID: "user-1", StartDate: utcDay(2024, time.March, 1)}
	other := models.CycleLog{UserID: "user-2", StartDate: utcDay(2024, time.March, 5)}
	for _, cycle := range []*models.CycleLog{&closed, &open, &other} {
		if err := repos.Cycles.Create(cycle); err != nil {
			t.Fatalf("create cycle: %v", err)
		}
	}
	if closed.ID == "" {
		t.Fatal("create did not assign an id")
	}

	listed, err := repos.Cycles.ListByUser("user-1", 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != open.ID {
		t.Fatalf("ListByUser = %+v, want user-1's cycles newest first", listed)
	}

	ascending, err := repos.Cycles.ListAllByUser("user-1")
	if err != nil {
		t.Fatalf("ListAllByUser: %v", err)
	}
	if len(ascending) != 2 || ascending[0].ID != closed.ID {
		t.Fatalf("ListAllByUser = %+v, want oldest first", ascending)
	}

	openCycles, err := repos.Cycles.ListOpen("user-1")
	if err != nil {
		t.Fatalf("ListOpen: %v", err)
	}
	if len(openCycles) != 1 || openCycles[0].ID != open.ID {
		t.Fatalf("ListOpen = %+v", openCycles)
	}

	_, found, err := repos.Cycles.FindByID("user-2", open.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found {
		t.Fatal("FindByID crossed user boundaries")
	}
}

func TestCycleRepositorySaveAndDelete(t *testing.T) {
	t.Parallel()
	repos := newTestRepos(t)

	cycle := models.CycleLog{UserID: "user-1", StartDate: utcDay(2024, time.March, 1)}
	if err := repos.Cycles.Create(&cycle); err != nil {
		t.Fatalf("create: %v", err)
	}

	end := utcDay(2024, time.March, 6)
	cycle.EndDate = &end
	if err := repos.Cycles.Save(&cycle); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, found, err := repos.Cycles.FindByID("user-1", cycle.ID)
	if err != nil || !found {
		t.Fatalf("reload: found=%v err=%v", found, err)
	}
	if reloaded.EndDate == nil {
		t.Fatal("end date not persisted")
	}

	if err := repos.Cycles.Delete("user-1", cycle.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, found, err = repos.Cycles.FindByID("user-1", cycle.ID)
	if err != nil {
		t.Fatalf("FindByID after delete: %v", err)
	}
	if found {
		t.Fatal("cycle survived delete")
	}
}

func TestRecordRepositoryRangeQueries(t *testing.T) {
	t.Parallel()
	repos := newTestRepos(t)

	days := []time.Time{
		utcDay(2024, time.March, 1),
		utcDay(2024, time.March, 10),
		utcDay(2024, time.February, 10),
	}
	for _, day := range days {
		record := models.DailyRecord{
			UserID: "user-1", Date: day,
			SkinCondition: 4, Sleep: 3, Stress: 2, SkincareEffort: 3,
			EnvPrefCode: "13",
		}
		if err := repos.Records.Create(&record); err != nil {
			t.Fatalf("create record for %s: %v", day, err)
		}
	}

	start := utcDay(2024, time.March, 1)
	end := utcDay(2024, time.March, 31)
	records, err := repos.Records.ListByUserRange("user-1", &start, &end, 0)
	if err != nil {
		t.Fatalf("ListByUserRange: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("range returned %d records, want 2", len(records))
	}
	if !records[0].Date.After(records[1].Date) {
		t.Fatalf("records not newest first: %v, %v", records[0].Date, records[1].Date)
	}

	all, err := repos.Records.ListByUserRange("user-1", nil, nil, 0)
	if err != nil {
		t.Fatalf("unbounded range: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("unbounded range returned %d records", len(all))
	}
}

func TestRecordRepositoryUniquePerUserAndDate(t *testing.T) {
	t.Parallel()
	repos := newTestRepos(t)

	day := utcDay(2024, time.March, 10)
	first := models.DailyRecord{UserID: "user-1", Date: day, SkinCondition: 4, Sleep: 3, Stress: 2, SkincareEffort: 3, EnvPrefCode: "13"}
	if err := repos.Records.Create(&first); err != nil {
		t.Fatalf("create: %v", err)
	}

	duplicate := models.DailyRecord{UserID: "user-1", Date: day, SkinCondition: 1, Sleep: 1, Stress: 1, SkincareEffort: 1, EnvPrefCode: "13"}
	if err := repos.Records.Create(&duplicate); err == nil {
		t.Fatal("duplicate user+date accepted")
	}

	// A different user may log the same day.
	otherUser := models.DailyRecord{UserID: "user-2", Date: day, SkinCondition: 4, Sleep: 3, Stress: 2, SkincareEffort: 3, EnvPrefCode: "13"}
	if err := repos.Records.Create(&otherUser); err != nil {
		t.Fatalf("same day for another user rejected: %v", err)
	}

	if err := repos.Records.DeleteByUserAndDate("user-1", day); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, found, err := repos.Records.FindByUserAndDate("user-1", day)
	if err != nil {
		t.Fatalf("find after delete: %v", err)
	}
	if found {
		t.Fatal("record survived delete")
	}
}
