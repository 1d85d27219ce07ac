package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sweetslice/cakeshop/internal/logging"
	"github.com/sweetslice/cakeshop/internal/models"
	"github.com/sweetslice/cakeshop/internal/mykafka"
	"github.com/sweetslice/cakeshop/internal/service/search"
	"github.com/sweetslice/cakeshop/internal/store"
)

// CakeHandler exposes catalog CRUD. ES is optional, when set every catalog
// write keeps the search index in sync best-effort.
type CakeHandler struct {
	Store    *store.Store
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	ESIndex  string
}

func (h *CakeHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", eventKey(event, "cakeID"), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *CakeHandler) reindex(c echo.Context, cake *models.Cake) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := search.IndexCake(ctx, h.ES, h.ESIndex, cake); err != nil {
		logging.FromContext(c.Request().Context()).Error("search index error", "error", err)
	}
}

func (h *CakeHandler) ListCakes(c echo.Context) error {
	cakes, err := h.Store.ListCakes(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cakes)
}

func (h *CakeHandler) GetCake(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	cake, err := h.Store.GetCake(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cake not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cake)
}

func (h *CakeHandler) CreateCake(c echo.Context) error {
	var req struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Price       *decimal.Decimal `json:"price"`
		Category    string           `json:"category"`
		ImageURL    string           `json:"image_url"`
		Stock       int              `json:"stock"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Description == "" || req.Price == nil || req.Category == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required fields")
	}
	if req.Price.IsNegative() {
		return echo.NewHTTPError(http.StatusBadRequest, "price must not be negative")
	}

	cake := models.Cake{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
	}
	id, err := h.Store.AddCake(c.Request().Context(), &cake)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{"type": "cake_created", "cakeID": id, "name": cake.Name})
	h.reindex(c, &cake)

	return c.JSON(http.StatusCreated, echo.Map{"id": id, "message": "Cake added successfully"})
}

// UpdateCake applies only the fields present in the payload. An empty payload
// reports not-found, same as an unknown id.
func (h *CakeHandler) UpdateCake(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Price       *decimal.Decimal `json:"price"`
		Category    *string          `json:"category"`
		ImageURL    *string          `json:"image_url"`
		Stock       *int             `json:"stock"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return echo.NewHTTPError(http.StatusBadRequest, "price must not be negative")
		}
		fields["price"] = *req.Price
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}

	if err := h.Store.UpdateCake(c.Request().Context(), id, fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cake not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{"type": "cake_updated", "cakeID": id})
	if cake, err := h.Store.GetCake(c.Request().Context(), id); err == nil {
		h.reindex(c, cake)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Cake updated successfully"})
}

func (h *CakeHandler) DeleteCake(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Store.DeleteCake(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cake not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{"type": "cake_deleted", "cakeID": id})
	if h.ES != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := search.DeleteCake(ctx, h.ES, h.ESIndex, id); err != nil {
			logging.FromContext(c.Request().Context()).Error("search index error", "error", err)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Cake deleted successfully"})
}
