package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"loan-service/internal/domain/loan"
	"loan-service/internal/domain/stock"
	applog "loan-service/internal/logger"
)

// Dialector picks the gorm driver for DB_DRIVER.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

func OpenGorm(driver, dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	dial, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	return OpenGormWithDialector(dial, logLevel)
}

func OpenGormWithDialector(dial gorm.Dialector, logLevel ...logger.LogLevel) (*gorm.DB, error) {
	lvl := logger.Warn
	if len(logLevel) > 0 {
		lvl = logLevel[0]
	}
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(lvl),
		// pinged below, once the pool is configured
		DisableAutomaticPing: true,
		// unique violations surface as gorm.ErrDuplicatedKey on every driver
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	applog.Info("gorm: connected", "dialect", dial.Name())
	return db, nil
}

// Migrate creates or updates the loans and decrement_attempts tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&loan.Loan{}, &stock.Attempt{})
}
