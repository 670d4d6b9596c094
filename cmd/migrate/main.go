// Command migrate manages the Postgres key/value store: create or drop the
// kv_store table, or import a file store directory into it.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"ramyeon-storefront/internal/config"
	"ramyeon-storefront/internal/db"
	"ramyeon-storefront/internal/logger"
	"ramyeon-storefront/internal/storage"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	mode := flag.String("mode", "up", "migration mode: up, down or import")
	dir := flag.String("dir", cfg.StoreDir, "file store directory read by -mode import")
	flag.Parse()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		logger.L().Error("failed to open database", zap.Error(err))
		os.Exit(1)
	}
	defer database.Close()

	if err := run(context.Background(), database, *mode, *dir); err != nil {
		logger.L().Error("migration failed", zap.String("mode", *mode), zap.Error(err))
		os.Exit(1)
	}
}

// keyLister is a store that can enumerate its keys.
type keyLister interface {
	storage.Store
	Keys(ctx context.Context) ([]string, error)
}

func run(ctx context.Context, conn *sql.DB, mode, dir string) error {
	pg := storage.NewPostgresStore(conn)

	switch mode {
	case "up":
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure kv_store table: %w", err)
		}
		logger.L().Info("kv_store table ready")
		return nil
	case "down":
		if err := pg.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop kv_store table: %w", err)
		}
		logger.L().Info("kv_store table dropped")
		return nil
	case "import":
		src, err := storage.NewFileStore(dir)
		if err != nil {
			return err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to ensure kv_store table: %w", err)
		}
		n, err := copyKeys(ctx, src, pg)
		if err != nil {
			return err
		}
		logger.L().Info("file store imported", zap.String("dir", dir), zap.Int("keys", n))
		return nil
	default:
		return fmt.Errorf("unknown mode: %s (use 'up', 'down' or 'import')", mode)
	}
}

// copyKeys writes every key of src into dst and returns how many were copied.
func copyKeys(ctx context.Context, src keyLister, dst storage.Store) (int, error) {
	keys, err := src.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list keys: %w", err)
	}
	for i, key := range keys {
		value, err := src.Get(ctx, key)
		if err != nil {
			return i, fmt.Errorf("failed to read %s: %w", key, err)
		}
		if err := dst.Set(ctx, key, value); err != nil {
			return i, fmt.Errorf("failed to write %s: %w", key, err)
		}
		logger.L().Debug("imported key", zap.String("key", key))
	}
	return len(keys), nil
}
