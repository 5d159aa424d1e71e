package database

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// RunMigrations applies every pending *.sql file in migrationsPath in name order.
// Each file runs in its own transaction together with its bookkeeping row.
func (db *DB) RunMigrations(ctx context.Context, migrationsPath string) error {
	if _, err := db.Exec(ctx, createMigrationsTableSQL); err != nil {
		return errors.Wrap(err, "failed to create migrations table")
	}

	migrationFiles, err := getMigrationFiles(migrationsPath)
	if err != nil {
		return errors.Wrap(err, "failed to get migration files")
	}

	appliedMigrations, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get applied migrations")
	}

	for _, file := range migrationFiles {
		if appliedMigrations[file] {
			continue
		}

		if err := db.runMigration(ctx, migrationsPath, file); err != nil {
			return errors.Wrapf(err, "failed to run migration %s", file)
		}

		db.logger.Info("migration_applied", fmt.Sprintf("Applied migration: %s", file), "startup", nil)
	}

	return nil
}

const createMigrationsTableSQL = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id SERIAL PRIMARY KEY,
		migration_name VARCHAR(255) NOT NULL UNIQUE,
		applied_at TIMESTAMPTZ DEFAULT NOW()
	)`

func getMigrationFiles(migrationsPath string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(migrationsPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".sql") {
			files = append(files, filepath.Base(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (db *DB) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := db.Query(ctx, "SELECT migration_name FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}

	return applied, rows.Err()
}

func (db *DB) runMigration(ctx context.Context, migrationsPath, filename string) error {
	content, err := os.ReadFile(filepath.Join(migrationsPath, filename))
	if err != nil {
		return errors.Wrap(err, "failed to read migration file")
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return errors.Wrap(err, "failed to execute migration")
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (migration_name) VALUES ($1)", filename); err != nil {
		return errors.Wrap(err, "failed to record migration")
	}

	return tx.Commit(ctx)
}
