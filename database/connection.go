package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
)

// Connect opens the PostgreSQL database and migrates the snapshot table.
func Connect(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("database connected")
	return db, nil
}

// Migrate creates or updates the tables the store needs.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Snapshot{}); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}
