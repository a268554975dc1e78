package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"log/slog"
)

// Migrator applies schema migrations.
type Migrator interface {
	Up(ctx context.Context) error
}

// SQLMigrator applies the *.up.sql files compiled into the binary (see
// MigrationsFS) in lexical order. Statements are split on semicolons, so
// migration files must not contain semicolons inside string literals.
type SQLMigrator struct {
	Logger *slog.Logger
	DB     *sql.DB
	FS     fs.FS
	Path   string
}

// NewSQLMigrator builds a migrator over the given filesystem and directory.
func NewSQLMigrator(db *sql.DB, f fs.FS, dir string, logger *slog.Logger) *SQLMigrator {
	return &SQLMigrator{DB: db, FS: f, Path: dir, Logger: logger}
}

// Up applies every migration file. Files run in name order, so new
// migrations must sort after existing ones.
func (m *SQLMigrator) Up(ctx context.Context) error {
	if m == nil {
		return errors.New("sql migrator is nil")
	}
	if m.DB == nil {
		return errors.New("sql migrator requires a database handle")
	}
	if m.FS == nil {
		return errors.New("sql migrator requires a filesystem")
	}
	if m.Path == "" {
		return errors.New("sql migrator requires a path")
	}

	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files, err := m.migrationFiles()
	if err != nil {
		return err
	}

	applied := 0
	for _, name := range files {
		ran, err := m.applyFile(ctx, name, logger)
		if err != nil {
			return err
		}
		if ran {
			applied++
			logger.Info("migration applied", "file", name)
		}
	}

	if applied == 0 {
		logger.Info("no migrations to run")
	}
	return nil
}

func (m *SQLMigrator) migrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(m.FS, m.Path)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// applyFile reports false when the file held no statements.
func (m *SQLMigrator) applyFile(ctx context.Context, name string, logger *slog.Logger) (bool, error) {
	contents, err := fs.ReadFile(m.FS, path.Join(m.Path, name))
	if err != nil {
		return false, fmt.Errorf("read migration %s: %w", name, err)
	}

	statements := splitStatements(string(contents))
	if len(statements) == 0 {
		logger.Info("skipping empty migration", "file", name)
		return false, nil
	}

	for i, stmt := range statements {
		if _, err := m.DB.ExecContext(ctx, stmt); err != nil {
			return false, fmt.Errorf("exec %s [%d]: %w", name, i+1, err)
		}
	}
	return true, nil
}

func splitStatements(sqlText string) []string {
	raw := strings.Split(sqlText, ";")
	out := make([]string, 0, len(raw))
	for _, stmt := range raw {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
