package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/activities-signup/internal/config"
	"github.com/Shivanand-hulikatti/activities-signup/internal/database"
	"github.com/Shivanand-hulikatti/activities-signup/internal/model"
	"github.com/Shivanand-hulikatti/activities-signup/internal/repository"
)

// openStore connects the configured registry backend and loads activities
// into it. Persistent backends keep activities they already hold. The
// returned func releases the backend's connections.
func openStore(ctx context.Context, cfg *config.Config, activities []model.Activity, log *zap.Logger) (repository.ActivityStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Database.Postgres, log)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		repo := repository.NewPostgresRepository(pool)
		if err := repo.Seed(ctx, activities); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Postgres.Host))
		return repo, pool.Close, nil

	case config.DriverRedis:
		rdb, err := database.NewRedis(ctx, cfg.Database.Redis)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewRedisRepository(rdb, cfg.Database.Redis.KeyPrefix)
		if err := repo.Seed(ctx, activities); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		log.Info("connected to Redis", zap.String("address", cfg.Database.Redis.Address))
		return repo, func() { _ = rdb.Close() }, nil

	case config.DriverMemory:
		repo, err := repository.NewMemoryRepository(activities)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
