package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"fixture-graph/internal/config"
	"fixture-graph/internal/db"
	"fixture-graph/internal/logger"
	"fixture-graph/internal/migrate"

	"go.uber.org/zap"
)

var openDatabase = db.NewDatabase

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		logger.L().Fatal("migration failed", zap.Error(err))
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	mode := fs.String("mode", "up", "migration mode: up or down")
	dir := fs.String("dir", "", "read migrations from this directory instead of the built-in set")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if cfg.StorageDriver == "" || cfg.StorageDriver == "memory" {
		return fmt.Errorf("STORAGE_DRIVER %q has no schema to migrate", cfg.StorageDriver)
	}

	migrations, err := loadMigrations(*dir)
	if err != nil {
		return err
	}

	conn, dialect, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	return migrate.Run(ctx, conn, dialect, *mode, migrations)
}

func loadMigrations(dir string) ([]migrate.Migration, error) {
	if dir == "" {
		return migrate.Embedded()
	}
	return migrate.Load(os.DirFS(dir), ".")
}
