package middleware

import (
	"context"
	"net/http"

	"storefront/internal/domain/model"

	"github.com/labstack/echo/v4"
)

type UserLookup interface {
	CurrentUser(ctx context.Context, sessionID string) (model.UserIdentity, error)
}

// セッションにログインユーザーがいるか確認（SessionCookie の後に置く）
func RequireUser(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := SessionID(c)
			if sid == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			user, err := users.CurrentUser(c.Request().Context(), sid)
			if err != nil || !user.LoggedIn() {
				return c.JSON(http.StatusUnauthorized, errorJSON("login required"))
			}

			c.Set(CtxUserKey, user)
			return next(c)
		}
	}
}
