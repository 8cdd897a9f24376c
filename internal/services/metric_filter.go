package services

import (
	"errors"

	"github.com/quietlotus/hadane/internal/models"
)

const (
	SortCategoryNone = "none"
	MetricSleep      = "sleep"
	MetricStress     = "stress"
	MetricSkincare   = "skincare"
)

const (
	DirectionGood = "good"
	DirectionBad  = "bad"
)

var (
	ErrInvalidSortCategory  = errors.New("invalid sort category")
	ErrInvalidSortDirection = errors.New("invalid sort direction")
)

// SortState is the category+direction selection that controls which metric
// glyphs a day shows. The fields are unexported so a direction can never
// exist without a category: SortNone carries none, SortBy requires both.
type SortState struct {
	category  string
	direction string
}

func SortNone() SortState {
	return SortState{category: SortCategoryNone}
}

func SortBy(category, direction string) (SortState, error) {
	switch category {
	case MetricSleep, MetricStress, MetricSkincare:
	default:
		return SortState{}, ErrInvalidSortCategory
	}
	switch direction {
	case DirectionGood, DirectionBad:
	default:
		return SortState{}, ErrInvalidSortDirection
	}
	return SortState{category: category, direction: direction}, nil
}

func (state SortState) Category() string {
	if state.category == "" {
		return SortCategoryNone
	}
	return state.category
}

// Direction returns the selected direction; ok is false when no category
// is selected.
func (state SortState) Direction() (string, bool) {
	if state.Category() == SortCategoryNone {
		return "", false
	}
	return state.direction, true
}

// MetricVisibility says which glyphs a day cell exposes.
type MetricVisibility struct {
	Sleep    bool
	Stress   bool
	Skincare bool
}

// VisibleMetrics decides the visible glyph set for a day. A score of
// exactly 3 is neutral and never shown. With no category selected every
// non-neutral metric is shown; with a category selected only that metric
// is evaluated, against the direction: good means >= 4, bad means <= 2.
func VisibleMetrics(summary *DailyRecordSummary, state SortState) MetricVisibility {
	if summary == nil {
		return MetricVisibility{}
	}

	switch state.Category() {
	case SortCategoryNone:
		return MetricVisibility{
			Sleep:    summary.Sleep != models.ScoreNeutral,
			Stress:   summary.Stress != models.ScoreNeutral,
			Skincare: summary.SkincareEffort != models.ScoreNeutral,
		}
	case MetricSleep:
		return MetricVisibility{Sleep: passesDirection(summary.Sleep, state.direction)}
	case MetricStress:
		return MetricVisibility{Stress: passesDirection(summary.Stress, state.direction)}
	case MetricSkincare:
		return MetricVisibility{Skincare: passesDirection(summary.SkincareEffort, state.direction)}
	}

	return MetricVisibility{}
}

func passesDirection(score int, direction string) bool {
	switch direction {
	case DirectionGood:
		return score >= 4
	case DirectionBad:
		return score <= 2
	}
	return false
}
