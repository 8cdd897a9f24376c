package db

import "gorm.io/gorm"

type Repositories struct {
	Cycles  *CycleRepository
	Records *RecordRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Cycles:  NewCycleRepository(database),
		Records: NewRecordRepository(database),
	}
}
