package app

import (
	"bitwise74/taskcamp/aws"
	"bitwise74/taskcamp/cloudflare"
	"bitwise74/taskcamp/config"
	"bitwise74/taskcamp/db"
	"bitwise74/taskcamp/internal"
	"bitwise74/taskcamp/internal/cache"
	"bitwise74/taskcamp/internal/queue"
	"bitwise74/taskcamp/internal/storage"
	"bitwise74/taskcamp/pkg/security"
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewDeps connects to the database, cache, storage and broker named in the
// config. The returned func releases the connections.
func NewDeps(ctx context.Context, cfg *config.Config) (*internal.Deps, func(), error) {
	conn, err := db.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	var rdb *redis.Client
	if cfg.Cache.Store == "redis" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis, %w", err)
		}
	}

	c, err := cache.New(cfg.Cache, rdb)
	if err != nil {
		return nil, nil, err
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage, %w", err)
	}

	client := asynq.NewClient(queue.RedisOpt(cfg.Queue.Redis))
	mail := queue.NewDispatcher(client, cfg.Queue, cfg.Mail.From)

	closer := func() {
		if err := client.Close(); err != nil {
			zap.L().Warn("Failed to close queue client", zap.Error(err))
		}

		if rdb != nil {
			rdb.Close()
		}

		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return internal.NewDeps(cfg, conn, store, c, mail, security.New()), closer, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "s3":
		s3, err := aws.NewS3(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}

		return storage.NewS3(s3.C, s3.Bucket), nil
	case "r2":
		r2, err := cloudflare.NewR2(ctx, cfg.Cloudflare)
		if err != nil {
			return nil, err
		}

		return storage.NewS3(r2.C, r2.Bucket), nil
	}

	local, err := storage.NewLocal(cfg.Storage.LocalPath)
	if err != nil {
		return nil, err
	}

	return local, nil
}
