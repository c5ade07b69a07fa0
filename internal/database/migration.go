package database

import (
	"fmt"

	"github.com/Bernardxu123/unicom-calc/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs the sync server schema migrations.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserConfig{},
		&models.MonthlyScore{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// AutoMigrateClient creates the local state table used by cardctl.
func AutoMigrateClient(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		return fmt.Errorf("auto migrate client: %w", err)
	}
	return nil
}
