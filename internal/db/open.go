package db

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/terraincognita07/bitebalance/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Options struct {
	// DatabaseURL selects Postgres when set; otherwise SQLitePath is used.
	DatabaseURL string
	SQLitePath  string
	Logger      gormlogger.Interface
}

func Open(options Options) (*gorm.DB, error) {
	if options.DatabaseURL != "" {
		return OpenPostgres(options.DatabaseURL, options.Logger)
	}
	return openSQLite(options.SQLitePath, options.Logger)
}

func OpenSQLite(dbPath string) (*gorm.DB, error) {
	return openSQLite(dbPath, nil)
}

func openSQLite(dbPath string, logger gormlogger.Interface) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: resolveLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := migrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

func OpenPostgres(dsn string, logger gormlogger.Interface) (*gorm.DB, error) {
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: resolveLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := migrate(database); err != nil {
		return nil, err
	}
	return database, nil
}

func migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate schema: %w", err)
	}
	if err := applyEmbeddedMigrations(database); err != nil {
		return fmt.Errorf("apply embedded migrations: %w", err)
	}
	return nil
}

func resolveLogger(logger gormlogger.Interface) gormlogger.Interface {
	if logger != nil {
		return logger
	}
	return gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}
