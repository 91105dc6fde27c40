package repository

import (
	"gorm.io/gorm"

	"github.com/bjorkit/backupwatch/interfaces"
	"github.com/bjorkit/backupwatch/internal/models"
)

type Repositories struct {
	ObservationRepository interfaces.ObservationRepository
}

func InitRepositories(db *gorm.DB, conflictPolicy string) *Repositories {
	return &Repositories{
		ObservationRepository: NewObservationRepository(db, conflictPolicy),
	}
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Observation{},
	)
}
