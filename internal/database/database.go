package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pageza/vitalchat/backend/config"
	"github.com/pageza/vitalchat/backend/internal/models"
)

// NewGorm opens the credential store for the configured driver. Postgres
// schemas are owned by the SQL migrations; sqlite is auto-migrated.
func NewGorm(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		slog.Info("connecting to postgres", "host", cfg.DBHost, "port", cfg.DBPort, "user", cfg.DBUser)
		dialector = postgres.Open(cfg.PostgresDSN())
	case "sqlite":
		slog.Info("opening sqlite database", "path", cfg.DBPath)
		dialector = sqlite.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	slog.Info("connected to credential store", "driver", cfg.DBDriver)
	return db, nil
}

// AutoMigrate creates the credential schema through gorm. It is used for
// sqlite, where the postgres SQL migrations do not apply.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Account{}); err != nil {
		return fmt.Errorf("failed to auto-migrate accounts: %w", err)
	}
	return nil
}
