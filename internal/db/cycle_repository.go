package db

import (
	"gorm.io/gorm"

	"github.com/quietlotus/hadane/internal/models"
)

type CycleRepository struct {
	database *gorm.DB
}

func NewCycleRepository(database *gorm.DB) *CycleRepository {
	return &CycleRepository{database: database}
}

func (repo *CycleRepository) ListByUser(userID string, limit int) ([]models.CycleLog, error) {
	cycles := make([]models.CycleLog, 0)
	query := repo.database.
		Where("user_id = ?", userID).
		Order("start_date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

// ListAllByUser returns every cycle for neighbour validation, oldest first.
func (repo *CycleRepository) ListAllByUser(userID string) ([]models.CycleLog, error) {
	cycles := make([]models.CycleLog, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("start_date ASC, id ASC").
		Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

// ListOpen returns every cycle with no end date, newest start first. More
// than one element means the at-most-one invariant is broken server-side.
func (repo *CycleRepository) ListOpen(userID string) ([]models.CycleLog, error) {
	cycles := make([]models.CycleLog, 0)
	if err := repo.database.
		Where("user_id = ? AND end_date IS NULL", userID).
		Order("start_date DESC, id DESC").
		Find(&cycles).Error; err != nil {
		return nil, err
	}
	return cycles, nil
}

func (repo *CycleRepository) FindByID(userID, cycleID string) (models.CycleLog, bool, error) {
	cycle := models.CycleLog{}
	result := repo.database.
		Where("id = ? AND user_id = ?", cycleID, userID).
		Limit(1).
		Find(&cycle)
	if result.Error != nil {
		return models.CycleLog{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.CycleLog{}, false, nil
	}
	return cycle, true, nil
}

func (repo *CycleRepository) Create(cycle *models.CycleLog) error {
	return repo.database.Create(cycle).Error
}

func (repo *CycleRepository) Save(cycle *models.CycleLog) error {
	return repo.database.Save(cycle).Error
}

func (repo *CycleRepository) Delete(userID, cycleID string) error {
	return repo.database.
		Where("id = ? AND user_id = ?", cycleID, userID).
		Delete(&models.CycleLog{}).Error
}
