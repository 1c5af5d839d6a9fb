package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/pageza/vitalchat/backend/config"
	"github.com/pageza/vitalchat/backend/internal/database"
	"github.com/pageza/vitalchat/backend/internal/logging"
)

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	list := flag.Bool("list", false, "List the embedded migrations and exit")
	flag.Parse()

	logger := logging.Setup(os.Stdout, os.Getenv("LOG_LEVEL"), config.IsProduction())

	if *list {
		migrations, err := database.Migrations()
		if err != nil {
			logger.Error("failed to read migrations", "error", err)
			os.Exit(1)
		}
		for _, m := range migrations {
			logger.Info("migration", "version", m.Version, "name", m.Name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logger.Error("DATABASE_URL is not set and configuration failed to load", "error", err)
			os.Exit(1)
		}
		dsn = cfg.PostgresDSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *rollback {
		name, err := database.RollbackLast(ctx, db)
		if errors.Is(err, database.ErrNoMigrations) {
			logger.Info("no migrations to rollback")
			return
		}
		if err != nil {
			logger.Error("rollback failed", "error", err)
			os.Exit(1)
		}
		logger.Info("rolled back migration", "name", name)
		return
	}

	applied, err := database.ApplyMigrations(ctx, db)
	if err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	if len(applied) == 0 {
		logger.Info("database is up to date")
		return
	}
	for _, name := range applied {
		logger.Info("applied migration", "name", name)
	}
}
