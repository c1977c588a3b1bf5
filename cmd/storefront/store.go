package main

import (
	"context"
	"fmt"

	"storefront/internal/config"
	"storefront/internal/infra/db"
	infraRepo "storefront/internal/infra/repository"
	repo "storefront/internal/repository"
)

// STORE_DRIVER に応じてクライアント状態の保存先を開く
func openStateStore(ctx context.Context, cfg config.Config) (repo.ClientStateRepository, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		gormDB, err := db.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(gormDB); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, err
		}
		return infraRepo.NewClientStateGormRepository(gormDB), sqlDB.Close, nil

	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return infraRepo.NewClientStateSQLiteRepository(sqlDB), sqlDB.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
