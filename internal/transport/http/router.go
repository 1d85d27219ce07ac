package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/sweetslice/cakeshop/internal/handlers"
)

type Deps struct {
	CakeHandler   *handlers.CakeHandler
	CartHandler   *handlers.CartHandler
	OrderHandler  *handlers.OrderHandler
	StatsHandler  *handlers.StatsHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	api := e.Group("/api")

	api.GET("/cakes", d.CakeHandler.ListCakes)
	api.GET("/cakes/:id", d.CakeHandler.GetCake)
	api.POST("/cakes", d.CakeHandler.CreateCake)
	api.PUT("/cakes/:id", d.CakeHandler.UpdateCake)
	api.DELETE("/cakes/:id", d.CakeHandler.DeleteCake)

	api.GET("/cart", d.CartHandler.GetCart)
	api.POST("/cart", d.CartHandler.AddToCart)
	api.POST("/cart/clear", d.CartHandler.ClearCart)
	api.DELETE("/cart/:id", d.CartHandler.RemoveFromCart)

	api.POST("/orders", d.OrderHandler.CreateOrder)
	api.GET("/orders", d.OrderHandler.ListOrders)
	api.GET("/orders/:id", d.OrderHandler.GetOrder)
	api.PUT("/orders/:id/status", d.OrderHandler.UpdateStatus)

	api.GET("/stats", d.StatsHandler.GetStats)

	if d.SearchHandler != nil {
		api.GET("/search", d.SearchHandler.Handler)
	}
}
