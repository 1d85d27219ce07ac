package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sweetslice/cakeshop/internal/store"
)

type StatsHandler struct {
	Store *store.Store
}

func (h *StatsHandler) GetStats(c echo.Context) error {
	stats, err := h.Store.Statistics(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}
