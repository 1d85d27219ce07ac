package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/sweetslice/cakeshop/internal/logging"
	"github.com/sweetslice/cakeshop/internal/models"
	"github.com/sweetslice/cakeshop/internal/mykafka"
	"github.com/sweetslice/cakeshop/internal/session"
	"github.com/sweetslice/cakeshop/internal/store"
)

type OrderHandler struct {
	Store    *store.Store
	Sessions *session.Manager
	Producer *mykafka.Producer
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", eventKey(event, "orderID"), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

// CreateOrder turns the session cart into an order. The total is computed
// from the cart snapshot, never taken from the client, and the cart is
// cleared only after the order committed.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req struct {
		CustomerName string `json:"customer_name"`
		Phone        string `json:"phone"`
		Address      string `json:"address"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	items := h.Sessions.Cart(c)
	if len(items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
	}
	if req.CustomerName == "" || req.Phone == "" || req.Address == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required fields")
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	order := models.Order{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Address:      req.Address,
		Total:        total,
		Status:       models.StatusPending,
	}
	id, err := h.Store.CreateOrder(c.Request().Context(), &order, items)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.Sessions.Clear(c)

	h.publish(c, map[string]any{"type": "order_created", "orderID": id, "total": total})

	return c.JSON(http.StatusCreated, echo.Map{
		"order_id": id,
		"total":    total,
		"message":  "Order created successfully",
	})
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.Store.ListOrders(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	order, err := h.Store.GetOrder(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing status")
	}

	if err := h.Store.UpdateOrderStatus(c.Request().Context(), id, req.Status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{"type": "order_status_updated", "orderID": id, "status": req.Status})

	return c.JSON(http.StatusOK, echo.Map{"message": "Order status updated"})
}
