package database

import (
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kestralog/config"
	"kestralog/models"
)

var DB *gorm.DB

// InitDB opens the local archive database, configures the connection pool,
// applies the busy-timeout pragma, and migrates the archive tables.
func InitDB() error {
	var err error

	// Configure GORM log level
	logLevel := logger.Silent
	if config.Settings.LogLevel == "DEBUG" {
		logLevel = logger.Info
	}

	dsn := buildSQLiteDSN(config.Settings.DatabaseURL, config.Settings.SQLiteBusyTimeoutMS)
	DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.New(
			log.New(log.Writer(), "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel: logLevel,
			},
		),
	})
	if err != nil {
		return err
	}

	// Get underlying SQL DB and configure the connection pool
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(config.Settings.SQLiteMaxIdleConns)
	sqlDB.SetMaxOpenConns(config.Settings.SQLiteMaxOpenConns)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if config.Settings.SQLiteBusyTimeoutMS > 0 {
		DB.Exec("PRAGMA busy_timeout = ?", config.Settings.SQLiteBusyTimeoutMS)
	}

	// Auto-migrate archive tables
	err = DB.AutoMigrate(&models.ArchivedLog{}, &models.AppSetting{})
	if err != nil {
		return err
	}

	log.Println("Archive database initialized successfully")
	return nil
}

// buildSQLiteDSN appends the busy-timeout pragma to the connection URL so it
// applies to every new connection, not just the startup one.
func buildSQLiteDSN(path string, busyTimeoutMS int) string {
	if busyTimeoutMS <= 0 {
		return path
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, busyTimeoutMS)
}

// CloseDB closes the database connection and releases resources
func CloseDB() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	log.Println("Closing archive database...")
	return sqlDB.Close()
}
