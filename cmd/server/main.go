package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sweetslice/cakeshop/internal/config"
	"github.com/sweetslice/cakeshop/internal/es"
	"github.com/sweetslice/cakeshop/internal/handlers"
	"github.com/sweetslice/cakeshop/internal/logging"
	loggingmw "github.com/sweetslice/cakeshop/internal/middleware/logging"
	"github.com/sweetslice/cakeshop/internal/mykafka"
	"github.com/sweetslice/cakeshop/internal/seed"
	"github.com/sweetslice/cakeshop/internal/session"
	"github.com/sweetslice/cakeshop/internal/store"
	httpserver "github.com/sweetslice/cakeshop/internal/transport/http"
)

const cakesIndex = "cakes"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LOG_LEVEL)
	slog.SetDefault(logger)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	if err := seed.Apply(context.Background(), db); err != nil {
		log.Fatalf("seed catalog error: %v", err)
	}

	var prod *mykafka.Producer
	if cfg.KAFKA_ADDRESS != "" {
		prod = mykafka.NewProducer([]string{cfg.KAFKA_ADDRESS})
	}

	var esClient *elasticsearch.Client
	if cfg.ES_URL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init error: %v", err)
		}
	}

	st := store.New(db)
	sessions := session.NewManager([]byte(cfg.SESSION_SECRET), cfg.SessionTTL())

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		CakeHandler:  &handlers.CakeHandler{Store: st, Producer: prod, ES: esClient, ESIndex: cakesIndex},
		CartHandler:  &handlers.CartHandler{Store: st, Sessions: sessions, Producer: prod},
		OrderHandler: &handlers.OrderHandler{Store: st, Sessions: sessions, Producer: prod},
		StatsHandler: &handlers.StatsHandler{Store: st},
	}
	if esClient != nil {
		deps.SearchHandler = &handlers.SearchHandler{ES: esClient, Index: cakesIndex}
	}

	httpserver.Register(e, &deps)

	addr := cfg.HTTP_ADDR
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
