package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cleancodehq/usermgmt/internal/config"
	"github.com/cleancodehq/usermgmt/internal/database"
	"github.com/cleancodehq/usermgmt/internal/domain/users"
	"github.com/cleancodehq/usermgmt/internal/logger"
	"github.com/cleancodehq/usermgmt/internal/storage/jsonfile"
	pgstorage "github.com/cleancodehq/usermgmt/internal/storage/postgres"
	"github.com/cleancodehq/usermgmt/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logr, _ := logger.New("development")
		logr.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr, _ := logger.New(cfg.Env)

	ctx := context.Background()

	var repo users.Repository
	switch cfg.DataBackend {
	case config.BackendJSON:
		repo, err = jsonfile.Open(cfg.UsersFile)
		if err != nil {
			logr.Error("failed to open users file", "file", cfg.UsersFile, "err", err)
			os.Exit(1)
		}
	case config.BackendSQLite:
		sqliteRepo, serr := sqlite.Open(cfg.SQLitePath)
		if serr != nil {
			logr.Error("failed to open sqlite store", "path", cfg.SQLitePath, "err", serr)
			os.Exit(1)
		}
		defer sqliteRepo.Close()
		repo = sqliteRepo
	case config.BackendPostgres:
		db, derr := database.Connect(ctx, database.Options{
			Driver:          cfg.DatabaseDriver,
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
			Logger:          logr,
		})
		if derr != nil {
			logr.Error("failed to connect database", "err", derr)
			os.Exit(1)
		}
		defer db.Close()

		migrator := database.NewSQLMigrator(db.DB, database.MigrationsFS(), database.MigrationsPath, logr)
		if err := db.RunMigrations(ctx, migrator); err != nil {
			logr.Error("migrations failed", "err", err)
			os.Exit(1)
		}
		repo = pgstorage.NewUserRepository(db.DB)
	default:
		logr.Error("seed command requires a persistent backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	svc := users.NewService(repo)

	sampleUsers := []users.CreateInput{
		{Name: "Alex Rivera", Email: "alex@example.com"},
		{Name: "Jordan Chen", Email: "jordan@example.com"},
		{Name: "Sam Okafor", Email: "sam@example.com"},
	}

	for _, input := range sampleUsers {
		created, err := svc.Create(input)
		if err != nil {
			logr.Error("failed to seed user", "email", input.Email, "err", err)
			os.Exit(1)
		}
		fmt.Printf("User: %s <%s> (id %d)\n", created.Name, created.Email, created.ID)
	}

	logr.Info("seed complete", "count", len(sampleUsers))
}
