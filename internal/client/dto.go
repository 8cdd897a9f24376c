package client

import (
	"fmt"
	"time"

	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/models"
	"github.com/quietlotus/hadane/internal/services"
)

// Wire shapes mirror the record/cycle service contract: dates travel as
// YYYY-MM-DD strings in the caller's local calendar, never as timestamps.

type cycleDTO struct {
	CycleID   string  `json:"cycle_id"`
	UserID    string  `json:"user_id,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type cycleListDTO struct {
	Cycles []cycleDTO `json:"cycles"`
	Total  int        `json:"total"`
}

type cycleCreateDTO struct {
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

type cycleEndDTO struct {
	EndDate string `json:"end_date"`
}

type cycleUpdateDTO struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

type recordDTO struct {
	RecordID           string  `json:"record_id"`
	UserID             string  `json:"user_id,omitempty"`
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

type recordListDTO struct {
	Records []recordDTO `json:"records"`
	Total   int         `json:"total"`
}

type recordCreateDTO struct {
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

type recordPatchDTO struct {
	SkinCondition      *int    `json:"skin_condition,omitempty"`
	Sleep              *int    `json:"sleep,omitempty"`
	Stress             *int    `json:"stress,omitempty"`
	SkincareEffort     *int    `json:"skincare_effort,omitempty"`
	MenstruationStatus *bool   `json:"menstruation_status,omitempty"`
	WaterIntake        *int    `json:"water_intake,omitempty"`
	Memo               *string `json:"memo,omitempty"`
	EnvPrefCode        *string `json:"env_pref_code,omitempty"`
}

type errorDTO struct {
	Detail string `json:"detail"`
}

// Record is the client-side view of a single day's record.
type Record struct {
	ID                 string
	Date               time.Time
	SkinCondition      int
	Sleep              int
	Stress             int
	SkincareEffort     int
	MenstruationStatus bool
	WaterIntake        *int
	Memo               string
	EnvPrefCode        string
}

func (record Record) Summary() services.DailyRecordSummary {
	return services.DailyRecordSummary{
		Date:           record.Date,
		SkinCondition:  record.SkinCondition,
		Sleep:          record.Sleep,
		Stress:         record.Stress,
		SkincareEffort: record.SkincareEffort,
		Memo:           record.Memo,
		EnvPrefCode:    record.EnvPrefCode,
	}
}

// RecordInput is the full payload of a save flow: the modal always submits
// every field, so updates overwrite rather than merge.
type RecordInput struct {
	Date               time.Time
	SkinCondition      int
	Sleep              int
	Stress             int
	SkincareEffort     int
	MenstruationStatus bool
	WaterIntake        *int
	Memo               string
	EnvPrefCode        string
}

func (input RecordInput) summary() services.DailyRecordSummary {
	return services.DailyRecordSummary{
		Date:           dateutil.DateOnly(input.Date),
		SkinCondition:  input.SkinCondition,
		Sleep:          input.Sleep,
		Stress:         input.Stress,
		SkincareEffort: input.SkincareEffort,
		Memo:           input.Memo,
		EnvPrefCode:    input.EnvPrefCode,
	}
}

func cycleFromDTO(dto cycleDTO, location *time.Location) (models.CycleLog, error) {
	start, err := dateutil.ParseDay(dto.StartDate, location)
	if err != nil {
		return models.CycleLog{}, fmt.Errorf("cycle %s start_date %q: %w", dto.CycleID, dto.StartDate, err)
	}
	cycle := models.CycleLog{
		ID:        dto.CycleID,
		UserID:    dto.UserID,
		StartDate: start,
	}
	if dto.EndDate != nil {
		end, err := dateutil.ParseDay(*dto.EndDate, location)
		if err != nil {
			return models.CycleLog{}, fmt.Errorf("cycle %s end_date %q: %w", dto.CycleID, *dto.EndDate, err)
		}
		cycle.EndDate = &end
	}
	return cycle, nil
}

func recordFromDTO(dto recordDTO, location *time.Location) (Record, error) {
	day, err := dateutil.ParseDay(dto.Date, location)
	if err != nil {
		return Record{}, fmt.Errorf("record %s date %q: %w", dto.RecordID, dto.Date, err)
	}
	record := Record{
		ID:                 dto.RecordID,
		Date:               day,
		SkinCondition:      dto.SkinCondition,
		Sleep:              dto.Sleep,
		Stress:             dto.Stress,
		SkincareEffort:     dto.SkincareEffort,
		MenstruationStatus: dto.MenstruationStatus,
		WaterIntake:        dto.WaterIntake,
		EnvPrefCode:        dto.EnvPrefCode,
	}
	if dto.Memo != nil {
		record.Memo = *dto.Memo
	}
	return record, nil
}
