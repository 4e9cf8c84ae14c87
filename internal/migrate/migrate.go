// Package migrate creates and removes the tables the SQL store needs.
// Migration files carry "-- +migrate Up" and "-- +migrate Down" sections and
// are applied in file name order, each at most once.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"fixture-graph/internal/db"
	"fixture-graph/internal/logger"

	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var embedded embed.FS

// Migration is one versioned file.
type Migration struct {
	Version string
	Up      string
	Down    string
}

// Load reads every *.sql file under dir of fsys, sorted by name.
func Load(fsys fs.FS, dir string) ([]Migration, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}
	sort.Strings(files)

	out := make([]Migration, 0, len(files))
	for _, f := range files {
		content, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		out = append(out, Migration{
			Version: path.Base(f),
			Up:      extractMigrationPart(string(content), "Up"),
			Down:    extractMigrationPart(string(content), "Down"),
		})
	}
	return out, nil
}

// Embedded returns the migrations compiled into the binary.
func Embedded() ([]Migration, error) {
	return Load(embedded, "migrations")
}

// Run applies (mode "up") or rolls back the latest (mode "down") migration.
func Run(ctx context.Context, conn *sql.DB, d db.Dialect, mode string, migrations []Migration) error {
	_, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	switch mode {
	case "up":
		return up(ctx, conn, d, migrations)
	case "down":
		return down(ctx, conn, d, migrations)
	default:
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}
}

func up(ctx context.Context, conn *sql.DB, d db.Dialect, migrations []Migration) error {
	log := logger.FromCtx(ctx).With(zap.String("layer", "migrate"))

	applied := 0
	for _, m := range migrations {
		var exists bool
		err := conn.QueryRowContext(ctx,
			d.Rebind(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)`),
			m.Version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			log.Debug("skipping applied migration", zap.String("version", m.Version))
			continue
		}

		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", m.Version, err)
		}
		if err := execScript(ctx, tx, m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration failed (%s): %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, d.Rebind(`INSERT INTO schema_migrations (version) VALUES (?)`), m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Version, err)
		}

		log.Info("applied migration", zap.String("version", m.Version))
		applied++
	}

	log.Info("migrations up to date", zap.Int("applied", applied))
	return nil
}

func down(ctx context.Context, conn *sql.DB, d db.Dialect, migrations []Migration) error {
	log := logger.FromCtx(ctx).With(zap.String("layer", "migrate"))

	var lastVersion string
	err := conn.QueryRowContext(ctx,
		`SELECT version FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1`,
	).Scan(&lastVersion)
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("no migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last applied migration: %w", err)
	}

	var target *Migration
	for i := range migrations {
		if migrations[i].Version == lastVersion {
			target = &migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration file not found for version: %s", lastVersion)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rollback: %w", err)
	}
	if err := execScript(ctx, tx, target.Down); err != nil {
		tx.Rollback()
		return fmt.Errorf("rollback failed (%s): %w", lastVersion, err)
	}
	if _, err := tx.ExecContext(ctx, d.Rebind(`DELETE FROM schema_migrations WHERE version = ?`), lastVersion); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rollback: %w", err)
	}

	log.Info("rolled back migration", zap.String("version", lastVersion))
	return nil
}

// execScript runs each ;-terminated statement separately; not every driver
// accepts several statements in one Exec.
func execScript(ctx context.Context, tx *sql.Tx, script string) error {
	for _, stmt := range splitStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func splitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func extractMigrationPart(content string, section string) string {
	lines := strings.Split(content, "\n")
	var part strings.Builder
	var inPart bool

	for _, line := range lines {
		if strings.Contains(line, "-- +migrate "+section) {
			inPart = true
			continue
		}
		if inPart && strings.HasPrefix(line, "-- +migrate") {
			break
		}
		if inPart {
			part.WriteString(line + "\n")
		}
	}
	return part.String()
}
