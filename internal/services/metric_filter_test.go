package services

import "testing"

func mustSortBy(t *testing.T, category, direction string) SortState {
	t.Helper()
	state, err := SortBy(category, direction)
	if err != nil {
		t.Fatalf("SortBy(%q, %q) returned error: %v", category, direction, err)
	}
	return state
}

func TestSortByRejectsInvalidStates(t *testing.T) {
	t.Parallel()

	if _, err := SortBy("none", DirectionGood); err != ErrInvalidSortCategory {
		t.Fatalf("SortBy(none, good) error = %v, want ErrInvalidSortCategory", err)
	}
	if _, err := SortBy("mood", DirectionGood); err != ErrInvalidSortCategory {
		t.Fatalf("SortBy(mood, good) error = %v, want ErrInvalidSortCategory", err)
	}
	if _, err := SortBy(MetricSleep, "sideways"); err != ErrInvalidSortDirection {
		t.Fatalf("SortBy(sleep, sideways) error = %v, want ErrInvalidSortDirection", err)
	}
	if _, err := SortBy(MetricSleep, ""); err != ErrInvalidSortDirection {
		t.Fatalf("SortBy(sleep, empty) error = %v, want ErrInvalidSortDirection", err)
	}
}

func TestSortStateDirectionPresence(t *testing.T) {
	t.Parallel()

	if _, ok := SortNone().Direction(); ok {
		t.Fatal("SortNone must not carry a direction")
	}
	if _, ok := (SortState{}).Direction(); ok {
		t.Fatal("zero SortState must behave as none")
	}
	if (SortState{}).Category() != SortCategoryNone {
		t.Fatal("zero SortState category must be none")
	}

	state := mustSortBy(t, MetricStress, DirectionBad)
	direction, ok := state.Direction()
	if !ok || direction != DirectionBad {
		t.Fatalf("Direction() = (%q, %v), want (bad, true)", direction, ok)
	}
}

func TestVisibleMetrics(t *testing.T) {
	t.Parallel()

	summary := func(sleep, stress, skincare int) *DailyRecordSummary {
		return &DailyRecordSummary{Sleep: sleep, Stress: stress, SkincareEffort: skincare, SkinCondition: 3}
	}

	tests := []struct {
		name    string
		summary *DailyRecordSummary
		state   SortState
		want    MetricVisibility
	}{
		{
			name:    "no summary shows nothing",
			summary: nil,
			state:   SortNone(),
			want:    MetricVisibility{},
		},
		{
			name:    "none shows every non-neutral metric",
			summary: summary(5, 1, 2),
			state:   SortNone(),
			want:    MetricVisibility{Sleep: true, Stress: true, Skincare: true},
		},
		{
			name:    "none suppresses neutral scores",
			summary: summary(3, 3, 4),
			state:   SortNone(),
			want:    MetricVisibility{Skincare: true},
		},
		{
			name:    "sleep good with high score",
			summary: summary(5, 1, 5),
			state:   mustSortBy(t, MetricSleep, DirectionGood),
			want:    MetricVisibility{Sleep: true},
		},
		{
			name:    "sleep good boundary at four",
			summary: summary(4, 5, 5),
			state:   mustSortBy(t, MetricSleep, DirectionGood),
			want:    MetricVisibility{Sleep: true},
		},
		{
			name:    "sleep good rejects low score",
			summary: summary(2, 5, 5),
			state:   mustSortBy(t, MetricSleep, DirectionGood),
			want:    MetricVisibility{},
		},
		{
			name:    "stress bad boundary at two",
			summary: summary(5, 2, 5),
			state:   mustSortBy(t, MetricStress, DirectionBad),
			want:    MetricVisibility{Stress: true},
		},
		{
			name:    "stress bad rejects neutral",
			summary: summary(5, 3, 5),
			state:   mustSortBy(t, MetricStress, DirectionBad),
			want:    MetricVisibility{},
		},
		{
			name:    "skincare bad",
			summary: summary(5, 5, 1),
			state:   mustSortBy(t, MetricSkincare, DirectionBad),
			want:    MetricVisibility{Skincare: true},
		},
		{
			name:    "category mismatch suppresses other metrics",
			summary: summary(5, 1, 1),
			state:   mustSortBy(t, MetricSleep, DirectionGood),
			want:    MetricVisibility{Sleep: true},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got := VisibleMetrics(test.summary, test.state)
			if got != test.want {
				t.Fatalf("VisibleMetrics = %+v, want %+v", got, test.want)
			}
		})
	}
}

func TestVisibleMetricsIdempotent(t *testing.T) {
	t.Parallel()

	summary := &DailyRecordSummary{Sleep: 4, Stress: 2, SkincareEffort: 3}
	states := []SortState{
		SortNone(),
		mustSortBy(t, MetricSleep, DirectionGood),
		mustSortBy(t, MetricStress, DirectionBad),
		mustSortBy(t, MetricSkincare, DirectionGood),
	}

	for _, state := range states {
		first := VisibleMetrics(summary, state)
		second := VisibleMetrics(summary, state)
		if first != second {
			t.Fatalf("VisibleMetrics not stable for category %s: %+v then %+v", state.Category(), first, second)
		}
	}
}

func TestVisibleMetricsNeutralNeverShown(t *testing.T) {
	t.Parallel()

	// Score 3 stays hidden under every possible sort state.
	summary := &DailyRecordSummary{Sleep: 3, Stress: 3, SkincareEffort: 3}

	states := []SortState{SortNone()}
	for _, category := range []string{MetricSleep, MetricStress, MetricSkincare} {
		for _, direction := range []string{DirectionGood, DirectionBad} {
			states = append(states, mustSortBy(t, category, direction))
		}
	}

	for _, state := range states {
		if got := VisibleMetrics(summary, state); got != (MetricVisibility{}) {
			t.Fatalf("neutral scores leaked a glyph under %s: %+v", state.Category(), got)
		}
	}
}
