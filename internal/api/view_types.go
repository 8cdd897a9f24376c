package api

import (
	"time"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/models"
)

type cycleView struct {
	CycleID   string    `json:"cycle_id"`
	UserID    string    `json:"user_id"`
	StartDate string    `json:"start_date"`
	EndDate   *string   `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCycleView(cycle models.CycleLog) cycleView {
	view := cycleView{
		CycleID:   cycle.ID,
		UserID:    cycle.UserID,
		StartDate: dateutil.FormatDay(cycle.StartDate),
		CreatedAt: cycle.CreatedAt,
		UpdatedAt: cycle.UpdatedAt,
	}
	if cycle.EndDate != nil {
		formatted := dateutil.FormatDay(*cycle.EndDate)
		view.EndDate = &formatted
	}
	return view
}

type recordView struct {
	RecordID           string    `json:"record_id"`
	UserID             string    `json:"user_id"`
	Date               string    `json:"date"`
	SkinCondition      int       `json:"skin_condition"`
	Sleep              int       `json:"sleep"`
	Stress             int       `json:"stress"`
	SkincareEffort     int       `json:"skincare_effort"`
	MenstruationStatus bool      `json:"menstruation_status"`
	WaterIntake        *int      `json:"water_intake"`
	Memo               *string   `json:"memo"`
	EnvPrefCode        string    `json:"env_pref_code"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toRecordView(record models.DailyRecord) recordView {
	view := recordView{
		RecordID:           record.ID,
		UserID:             record.UserID,
		Date:               dateutil.FormatDay(record.Date),
		SkinCondition:      record.SkinCondition,
		Sleep:              record.Sleep,
		Stress:             record.Stress,
		SkincareEffort:     record.SkincareEffort,
		MenstruationStatus: record.MenstruationStatus,
		WaterIntake:        record.WaterIntake,
		EnvPrefCode:        record.EnvPrefCode,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
	if record.Memo != "" {
		memo := record.Memo
		view.Memo = &memo
	}
	return view
}

type cycleCreatePayload struct {
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type cycleEndPayload struct {
	EndDate string `json:"end_date"`
}

type cycleUpdatePayload struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type recordCreatePayload struct {
	Date               string  `json:"date"`
	SkinCondition      int     `json:"skin_condition"`
	Sleep              int     `json:"sleep"`
	Stress             int     `json:"stress"`
	SkincareEffort     int     `json:"skincare_effort"`
	MenstruationStatus bool    `json:"menstruation_status"`
	WaterIntake        *int    `json:"water_intake"`
	Memo               *string `json:"memo"`
	EnvPrefCode        string  `json:"env_pref_code"`
}

type recordUpdatePayload struct {
	SkinCondition      *int    `json:"skin_condition"`
	Sleep              *int    `json:"sleep"`
	Stress             *int    `json:"stress"`
	SkincareEffort     *int    `json:"skincare_effort"`
	MenstruationStatus *bool   `json:"menstruation_status"`
	WaterIntake        *int    `json:"water_intake"`
	Memo               *string `json:"memo"`
	EnvPrefCode        *string `json:"env_pref_code"`
}

func (payload recordUpdatePayload) empty() bool {
	return payload.SkinCondition == nil &&
		payload.Sleep == nil &&
		payload.Stress == nil &&
		payload.SkincareEffort == nil &&
		payload.MenstruationStatus == nil &&
		payload.WaterIntake == nil &&
		payload.Memo == nil &&
		payload.EnvPrefCode == nil
}
