package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CycleLog is one recorded menstrual cycle occurrence. A nil EndDate means
// the cycle is still open; at most one cycle per user may be open.
type CycleLog struct {
	ID        string     `gorm:"primaryKey;size:36"`
	UserID    string     `gorm:"size:36;not null;index:idx_cycle_user_start"`
	StartDate time.Time  `gorm:"type:date;not null;index:idx_cycle_user_start"`
	EndDate   *time.Time `gorm:"type:date"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cycle *CycleLog) BeforeCreate(*gorm.DB) error {
	if cycle.ID == "" {
		cycle.ID = uuid.NewString()
	}
	return nil
}

// Open reports whether the cycle has no recorded end date yet.
func (cycle CycleLog) Open() bool {
	return cycle.EndDate == nil
}
