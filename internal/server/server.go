package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"storefront/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Deps struct {
	Session middleware.SessionConfig
	Users   middleware.UserLookup
	Logger  *zap.Logger
}

// New はミドルウェアとルートを載せた echo を返す
func New(h Handlers, deps Deps) *echo.Echo {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.SessionCookie(deps.Session))
	e.Use(middleware.RequestLogger(deps.Logger))

	RegisterRoutes(e, h, deps)
	return e
}

// Start は ctx がキャンセルされるまで待ち受け、その後グレースフルに止める
func Start(ctx context.Context, e *echo.Echo, addr string, logger *zap.Logger) error {
	addr = normalizeAddr(addr)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("server shutting down")
	return e.Shutdown(shutdownCtx)
}

// "8080" でも ":8080" でも受け付ける
func normalizeAddr(v string) string {
	if v == "" {
		return ":8080"
	}
	if strings.Contains(v, ":") {
		return v
	}
	return ":" + v
}
