package history

import (
	"context"
	"fmt"

	"eventchat/internal/app/db"
	"eventchat/internal/app/storage"
	"eventchat/internal/configs"
	"eventchat/internal/pkg/logx"
)

// Open builds the Store selected by cfg.HistoryBackend.
func Open(ctx context.Context, cfg *configs.AppConfig) (Store, error) {
	logx.Info("Opening history store", "backend", cfg.HistoryBackend)

	switch cfg.HistoryBackend {
	case configs.HistoryBackendMemory:
		return NewMemoryStore(), nil

	case configs.HistoryBackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool), nil

	case configs.HistoryBackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath)

	case configs.HistoryBackendRedis:
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	case configs.HistoryBackendS3:
		objects, err := storage.NewObjectStore(ctx, storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return NewObjectStore(objects, cfg.S3Prefix), nil
	}

	return nil, fmt.Errorf("unsupported history backend %q", cfg.HistoryBackend)
}
