package handler

import (
	"net/http"

	"storefront/internal/catalog"
	"storefront/internal/domain/model"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /store（ストア画面の状態）のHTTP
type StoreHandler struct {
	uc *usecase.CatalogUsecase
}

// DI
func NewStoreHandler(uc *usecase.CatalogUsecase) *StoreHandler {
	return &StoreHandler{uc: uc}
}

type SearchRequest struct {
	Q         string `json:"q"`
	Immediate bool   `json:"immediate"`
}

type PageRequest struct {
	Page int `json:"page"`
}

// /store 以下を登録
func (h *StoreHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/store")

	g.GET("", h.view)
	g.POST("/reload", h.reload)
	g.PATCH("/filters", h.patchFilters)
	g.PUT("/search", h.search)
	g.PUT("/page", h.setPage)
	g.POST("/page/next", h.nextPage)
	g.POST("/page/prev", h.prevPage)
	g.POST("/reset", h.reset)
}

func (h *StoreHandler) view(c echo.Context) error {
	return h.respond(c, func(sid string) (catalog.View, error) {
		return h.uc.View(c.Request().Context(), sid)
	})
}

func (h *StoreHandler) reload(c echo.Context) error {
	return h.respond(c, func(sid string) (catalog.View, error) {
		return h.uc.Reload(c.Request().Context(), sid)
	})
}

func (h *StoreHandler) patchFilters(c echo.Context) error {
	var req model.FilterPatch
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.respond(c, func(sid string) (catalog.View, error) {
		return h.uc.ApplyFilter(c.Request().Context(), sid, req)
	})
}

func (h *StoreHandler) search(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.respond(c, func(sid string) (catalog.View, error) {
		return h.uc.Search(c.Request().Context(), sid, usecase.SearchInput{Query: req.Q, Immediate: req.Immediate})
	})
}

func (h *StoreHandler) setPage(c echo.Context) error {
	var req PageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.respond(c, func(sid string) (catalog.View, error) {
		return h.uc.SetPage(c.Request().Context(), sid, req.Page)
	})
}

func (h *StoreHandler) nextPage(c echo.Context) error {
	return h.respond(c, func(sid string) (catalog.View, error) {
		return h.uc.NextPage(c.Request().Context(), sid)
	})
}

func (h *StoreHandler) prevPage(c echo.Context) error {
	return h.respond(c, func(sid string) (catalog.View, error) {
		return h.uc.PrevPage(c.Request().Context(), sid)
	})
}

func (h *StoreHandler) reset(c echo.Context) error {
	return h.respond(c, func(sid string) (catalog.View, error) {
		return h.uc.Reset(c.Request().Context(), sid)
	})
}

func (h *StoreHandler) respond(c echo.Context, fn func(sid string) (catalog.View, error)) error {
	sid, ok := getSessionIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := fn(sid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
