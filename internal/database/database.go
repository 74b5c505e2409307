package database

import (
	"fmt"
	"log"
	"strings"

	"taskbuddy-api/internal/config"
	"taskbuddy-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the SQLite file at cfg.Path and runs migrations.
// Using glebarez/sqlite which is a pure Go implementation (no CGO required)
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(LogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables for all models
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// InitDB initializes the package-level connection and runs migrations
func InitDB(cfg config.DatabaseConfig) {
	var err error
	DB, err = Open(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	log.Printf("Database %s connected and migrated", cfg.Path)
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}

// LogLevel maps a config string to a gorm log level; unknown values mean warn
func LogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
