package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// migrationFile is one SQL file to apply, ordered by filename.
type migrationFile struct {
	Name string
	SQL  string
}

// loadMigrations reads every .sql file under dir in filename order.
func loadMigrations(dir string) ([]migrationFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	files := make([]migrationFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{Name: entry.Name(), SQL: string(content)})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// RunMigrations applies the SQL files under dir that have not run yet.
// Applied filenames are recorded in schema_migrations, so re-running at
// every startup is safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	const trackingTable = `
        CREATE TABLE IF NOT EXISTS schema_migrations (
            filename   TEXT PRIMARY KEY,
            applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`
	if _, err := pool.Exec(ctx, trackingTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := loadMigrations(dir)
	if err != nil {
		return err
	}

	applied := 0
	for _, file := range files {
		var done bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE filename=$1)`,
			file.Name).Scan(&done); err != nil {
			return fmt.Errorf("check migration %s: %w", file.Name, err)
		}
		if done {
			continue
		}

		logger.Info("applying migration", zap.String("file", file.Name))
		if _, err := pool.Exec(ctx, file.SQL); err != nil {
			return fmt.Errorf("apply migration %s: %w", file.Name, err)
		}
		if _, err := pool.Exec(ctx,
			`INSERT INTO schema_migrations (filename) VALUES ($1)`, file.Name); err != nil {
			return fmt.Errorf("record migration %s: %w", file.Name, err)
		}
		applied++
	}

	logger.Info("migrations applied",
		zap.Int("applied", applied), zap.Int("known", len(files)))
	return nil
}
