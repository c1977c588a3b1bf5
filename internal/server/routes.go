package server

import (
	"storefront/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Store    *handler.StoreHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Auth     *handler.AuthHandler
	Checkout *handler.CheckoutHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, deps Deps) {
	handler.RegisterHealth(e)

	h.Store.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e, deps.Users)
}
