package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sweetslice/cakeshop/internal/logging"
	"github.com/sweetslice/cakeshop/internal/models"
	"github.com/sweetslice/cakeshop/internal/mykafka"
	"github.com/sweetslice/cakeshop/internal/session"
	"github.com/sweetslice/cakeshop/internal/store"
)

// CartHandler manages the session-scoped cart. The cart never touches the
// database, only the catalog lookups do.
type CartHandler struct {
	Store    *store.Store
	Sessions *session.Manager
	Producer *mykafka.Producer
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", eventKey(event, "cakeID"), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "error", err)
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Sessions.Cart(c))
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	var req struct {
		CakeID   int `json:"cake_id"`
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cake, err := h.Store.GetCake(c.Request().Context(), req.CakeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "cake not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	items := h.Sessions.Add(c, models.CartItem{
		CakeID:   cake.ID,
		Name:     cake.Name,
		Price:    cake.Price,
		ImageURL: cake.ImageURL,
		Quantity: req.Quantity,
	})

	h.publish(c, map[string]any{"type": "cart_item_added", "cakeID": cake.ID, "quantity": req.Quantity})

	return c.JSON(http.StatusOK, echo.Map{"message": "Added to cart", "cart": items})
}

// RemoveFromCart drops every cart entry for the cake id. Removing an id that
// is not in the cart is a no-op, not an error.
func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	items := h.Sessions.Remove(c, id)

	h.publish(c, map[string]any{"type": "cart_item_removed", "cakeID": id})

	return c.JSON(http.StatusOK, echo.Map{"message": "Removed from cart", "cart": items})
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	h.Sessions.Clear(c)

	h.publish(c, map[string]any{"type": "cart_cleared"})

	return c.JSON(http.StatusOK, echo.Map{"message": "Cart cleared"})
}
