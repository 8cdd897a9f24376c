package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Metric scores run 1..5. A score of exactly 3 is neutral and never shown
// as a calendar glyph.
const (
	ScoreMin     = 1
	ScoreNeutral = 3
	ScoreMax     = 5
)

const MemoMaxLength = 255

func ValidScore(value int) bool {
	return value >= ScoreMin && value <= ScoreMax
}

// DailyRecord is the one-per-day habit/skin log entry.
type DailyRecord struct {
	ID                 string    `gorm:"primaryKey;size:36"`
	UserID             string    `gorm:"size:36;not null;uniqueIndex:uidx_record_user_date"`
	Date               time.Time `gorm:"type:date;not null;uniqueIndex:uidx_record_user_date"`
	SkinCondition      int       `gorm:"not null"`
	Sleep              int       `gorm:"not null"`
	Stress             int       `gorm:"not null"`
	SkincareEffort     int       `gorm:"not null"`
	MenstruationStatus bool      `gorm:"not null;default:false"`
	WaterIntake        *int
	Memo               string
	EnvPrefCode        string `gorm:"size:2;not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (record *DailyRecord) BeforeCreate(*gorm.DB) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	return nil
}
