package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/cleancodehq/usermgmt/internal/auth"
	"github.com/cleancodehq/usermgmt/internal/config"
	"github.com/cleancodehq/usermgmt/internal/database"
	"github.com/cleancodehq/usermgmt/internal/domain"
	"github.com/cleancodehq/usermgmt/internal/httpapi"
	"github.com/cleancodehq/usermgmt/internal/logger"
	"github.com/cleancodehq/usermgmt/internal/server"
	"github.com/cleancodehq/usermgmt/internal/storage/jsonfile"
	"github.com/cleancodehq/usermgmt/internal/storage/memory"
	pgstorage "github.com/cleancodehq/usermgmt/internal/storage/postgres"
	"github.com/cleancodehq/usermgmt/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	logr, logLevel := logger.New(cfg.Env)

	baseCtx := context.Background()

	var db *database.DB
	if cfg.DataBackend == config.BackendPostgres {
		db, err = database.Connect(baseCtx, database.Options{
			Driver:          cfg.DatabaseDriver,
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
			Logger:          logr,
		})
		if err != nil {
			logr.Error("failed to connect database", "err", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logr.Error("error closing database", "err", cerr)
			}
		}()

		migrator := database.NewSQLMigrator(db.DB, database.MigrationsFS(), database.MigrationsPath, logr)
		if err := db.RunMigrations(baseCtx, migrator); err != nil {
			logr.Error("database migrations failed", "err", err)
			os.Exit(1)
		}
	}

	domainContainer, err := buildDomainContainer(cfg, logr, db)
	if err != nil {
		logr.Error("failed to init domain container", "err", err)
		os.Exit(1)
	}

	guard := auth.NewGuard(cfg.AdminToken)
	if cfg.AdminToken == "" {
		logr.Warn("no admin token configured; destructive endpoints are unprotected")
	}

	var watcher *config.Watcher
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		watcher, err = config.NewWatcher(path, cfg, logr)
		if err != nil {
			logr.Error("failed to start config watcher", "err", err)
			os.Exit(1)
		}
		watcher.OnChange(func(old, next config.Config) {
			if old.AdminToken != next.AdminToken {
				guard.SetToken(next.AdminToken)
				logr.Info("admin token rotated via config reload")
			}
			if old.Env != next.Env {
				logLevel.Set(logger.LevelFor(next.Env))
				logr.Info("log level adjusted via config reload", "env", next.Env, "level", logLevel.Level())
			}
		})
		watcher.Start()
		defer func() {
			if werr := watcher.Stop(); werr != nil {
				logr.Error("error stopping config watcher", "err", werr)
			}
		}()
	}

	srv := server.New(cfg, logr)

	httpapi.Register(srv.Mux(), logr, domainContainer, guard)

	go func() {
		if err := srv.Run(); err != nil {
			logr.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server shutdown failed", "err", err)
		os.Exit(1)
	}
}

func buildDomainContainer(cfg config.Config, logr *slog.Logger, db *database.DB) (domain.Container, error) {
	switch cfg.DataBackend {
	case config.BackendMemory:
		logr.Info("using in-memory repositories (DATA_BACKEND=memory)")
		return domain.New(domain.Options{
			UserRepo: memory.NewUserRepository(),
		}), nil
	case config.BackendJSON:
		repo, err := jsonfile.Open(cfg.UsersFile)
		if err != nil {
			return domain.Container{}, fmt.Errorf("open users file: %w", err)
		}
		logr.Info("using json file repository", "file", cfg.UsersFile)
		return domain.New(domain.Options{UserRepo: repo}), nil
	case config.BackendSQLite:
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return domain.Container{}, fmt.Errorf("open sqlite store: %w", err)
		}
		logr.Info("using sqlite repository", "path", cfg.SQLitePath)
		return domain.New(domain.Options{UserRepo: repo}), nil
	case config.BackendPostgres:
		if db == nil {
			return domain.Container{}, fmt.Errorf("postgres backend requires database connection")
		}
		logr.Info("using postgres repository (DATA_BACKEND=postgres)")
		return domain.New(domain.Options{
			UserRepo: pgstorage.NewUserRepository(db.DB),
		}), nil
	default:
		return domain.Container{}, fmt.Errorf("unsupported data backend: %s", cfg.DataBackend)
	}
}
