package infra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"bloodlink/internal/kv"
)

// OpenLocalStore opens the key-value store selected by LOCAL_BACKEND.
func OpenLocalStore(ctx context.Context, cfg *Config) (kv.Store, error) {
	switch cfg.LocalBackend {
	case LocalFile, "":
		return kv.NewFile(cfg.LocalDataDir)
	case LocalSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("ensure sqlite dir: %w", err)
		}
		return kv.OpenSQLite(ctx, cfg.SQLitePath)
	case LocalRedis:
		client, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return kv.NewRedis(client, cfg.RedisPrefix), nil
	case LocalMemory:
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown local backend %q", cfg.LocalBackend)
	}
}
