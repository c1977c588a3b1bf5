package main

import (
	"fmt"

	"storefront/internal/config"
	"storefront/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the client state table",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.GoEnv)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	// 開く時点でスキーマは作成・更新される
	_, closeStore, err := openStateStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	logger.Info("migration completed", zap.String("driver", cfg.StoreDriver))
	return nil
}
