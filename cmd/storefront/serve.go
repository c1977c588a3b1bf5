package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"storefront/internal/backend"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/format"
	"storefront/internal/handler"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.GoEnv)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//保存先
	states, closeStore, err := openStateStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	//バックエンドAPI
	api := backend.NewClient(cfg.BackendURL, &http.Client{Timeout: cfg.BackendTimeout}, logger.Named("backend"))

	//セッション
	sessions, err := usecase.NewSessionRegistry(states, api, usecase.SessionSettings{
		Catalog: catalog.Settings{
			PageSize:       cfg.PageSize,
			SaleThreshold:  cfg.SaleThreshold,
			SearchDebounce: cfg.SearchDebounce,
		},
		LoginPath: cfg.LoginPath,
		CacheSize: cfg.SessionCacheSize,
	}, logger.Named("session"))
	if err != nil {
		return err
	}
	defer sessions.Close()

	prices := format.NewPriceFormatter(cfg.Locale, cfg.PriceSymbol)

	//Usecase生成
	catalogUC := usecase.NewCatalogUsecase(sessions, api, prices, cfg.RelatedLimit, logger)
	cartUC := usecase.NewCartUsecase(sessions, api, prices, logger)
	authUC := usecase.NewAuthUsecase(sessions, api, validator.NewAuthValidator(), logger)
	checkoutUC := usecase.NewCheckoutUsecase(sessions, api, validator.NewCheckoutValidator(), prices, logger)

	//Handler生成
	e := server.New(server.Handlers{
		Store:    handler.NewStoreHandler(catalogUC),
		Product:  handler.NewProductHandler(catalogUC),
		Cart:     handler.NewCartHandler(cartUC),
		Auth:     handler.NewAuthHandler(authUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC),
	}, server.Deps{
		Session: middleware.SessionConfig{Secret: cfg.SessionSecret, Secure: cfg.CookieSecure},
		Users:   authUC,
		Logger:  logger,
	})

	logger.Info("storefront starting",
		zap.String("backend", api.BaseURL()),
		zap.String("store_driver", cfg.StoreDriver),
		zap.String("env", cfg.GoEnv),
	)
	return server.Start(ctx, e, cfg.Port, logger)
}
