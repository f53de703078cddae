package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Cnbkrtl/salesv2render-deneme/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the relational store and runs migrations. A MySQL DSN
// (user:pass@tcp(host)/db) selects the MySQL driver; anything path-like
// falls back to SQLite, which is also the development default.
func Initialize(databaseURL string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var db *gorm.DB
	var err error
	if isMySQLDSN(databaseURL) {
		db, err = gorm.Open(mysql.Open(databaseURL), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
		}

		sqlDB, poolErr := db.DB()
		if poolErr != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", poolErr)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		db, err = gorm.Open(sqlite.Open(databaseURL), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database %q: %w", databaseURL, err)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialized successfully")
	return db, nil
}

// Migrate creates or updates the three core tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Product{},
		&models.SalesOrder{},
		&models.SalesOrderItem{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func isMySQLDSN(dsn string) bool {
	// user:pass@tcp(host:port)/db; the @tcp( marker is unambiguous enough.
	return strings.Contains(dsn, "@tcp(") || strings.Contains(dsn, "@unix(")
}
