package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/quietlotus/hadane/internal/models"
)

type RecordRepository struct {
	database *gorm.DB
}

func NewRecordRepository(database *gorm.DB) *RecordRepository {
	return &RecordRepository{database: database}
}

// ListByUserRange returns records in the inclusive [start, end] date
// range, newest first. Nil bounds leave that side open.
func (repo *RecordRepository) ListByUserRange(userID string, start, end *time.Time, limit int) ([]models.DailyRecord, error) {
	query := repo.database.Model(&models.DailyRecord{}).Where("user_id = ?", userID)
	if start != nil {
		query = query.Where("date >= ?", *start)
	}
	if end != nil {
		query = query.Where("date <= ?", *end)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	records := make([]models.DailyRecord, 0)
	if err := query.Order("date DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *RecordRepository) FindByUserAndDate(userID string, day time.Time) (models.DailyRecord, bool, error) {
	record := models.DailyRecord{}
	result := repo.database.
		Where("user_id = ? AND date = ?", userID, day).
		Limit(1).
		Find(&record)
	if result.Error != nil {
		return models.DailyRecord{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DailyRecord{}, false, nil
	}
	return record, true, nil
}

func (repo *RecordRepository) Create(record *models.DailyRecord) error {
	return repo.database.Create(record).Error
}

func (repo *RecordRepository) Save(record *models.DailyRecord) error {
	return repo.database.Save(record).Error
}

func (repo *RecordRepository) DeleteByUserAndDate(userID string, day time.Time) error {
	return repo.database.
		Where("user_id = ? AND date = ?", userID, day).
		Delete(&models.DailyRecord{}).Error
}
