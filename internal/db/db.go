// Package db opens the SQL database behind the durable store and hides the
// differences between the supported dialects.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fixture-graph/internal/config"
	"fixture-graph/internal/logger"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Dialect describes one SQL flavour.
type Dialect struct {
	Name     string
	Driver   string
	numbered bool
}

var (
	Postgres = Dialect{Name: "postgres", Driver: "postgres", numbered: true}
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite"}
)

// DialectFor maps a STORAGE_DRIVER value to its dialect.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported storage driver %q", name)
	}
}

// Rebind rewrites ? placeholders into the dialect's own form. Queries in
// this module never contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func buildDSN(cfg *config.Config) string {
	if cfg.DBURL != "" {
		return cfg.DBURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)
}

// NewDatabase opens and pings the database selected by cfg.StorageDriver.
func NewDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, Dialect, error) {
	d, err := DialectFor(cfg.StorageDriver)
	if err != nil {
		return nil, Dialect{}, err
	}

	dsn := buildDSN(cfg)
	if d == SQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return nil, Dialect{}, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.DBPath
	}

	conn, err := newDatabaseWithDriver(ctx, d.Driver, dsn)
	if err != nil {
		return nil, Dialect{}, err
	}
	if d == SQLite {
		// One writer at a time; sqlite locks the whole file anyway.
		conn.SetMaxOpenConns(1)
	}

	logger.FromCtx(ctx).Info("database connection established",
		zap.String("dialect", d.Name),
	)
	return conn, d, nil
}

func newDatabaseWithDriver(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return conn, nil
}
