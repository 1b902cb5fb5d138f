package database

import (
	"log"

	"trainingdesk/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Models lists every persisted entity in migration order.
var Models = []any{
	&model.User{},
	&model.Department{},
	&model.TrainingType{},
	&model.Training{},
	&model.TrainingApplication{},
	&model.Certificate{},
	&model.PaymentRate{},
	&model.TrainerLevel{},
	&model.Payment{},
	&model.Contract{},
	&model.WarrantyMoney{},
	&model.Innovator{},
	&model.Innovation{},
	&model.AuditLog{},
}

// Config is shared by every dialect. TranslateError turns driver unique
// violations into gorm.ErrDuplicatedKey.
func Config() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate creates or updates the schema, including the unique indexes that
// back the duplicate-request guards.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}
