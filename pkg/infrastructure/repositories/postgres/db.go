package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewConnection opens a connection pool and migrates the requisition tables
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the requisition tables
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&requisitionRecord{},
		&lineItemRecord{},
		&statusChangeRecord{},
		&availableProductRecord{},
		&previousRequisitionRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate requisition tables: %w", err)
	}
	return nil
}
