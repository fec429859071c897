package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ticketline/ticketline/internal/config"
	"github.com/ticketline/ticketline/internal/db"
	"github.com/ticketline/ticketline/internal/es"
	"github.com/ticketline/ticketline/internal/events"
	"github.com/ticketline/ticketline/internal/handlers"
	"github.com/ticketline/ticketline/internal/logging"
	loggingmw "github.com/ticketline/ticketline/internal/middleware/logging"
	"github.com/ticketline/ticketline/internal/service/auth"
	"github.com/ticketline/ticketline/internal/store"
	httpserver "github.com/ticketline/ticketline/internal/transport/http"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.ServiceName)

	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database init failed: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers)

	var esClient *elasticsearch.Client
	if cfg.ESURL != "" {
		esClient, err = es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch init failed: %v", err)
		}
	} else {
		logger.Warn("ES_URL not set, search disabled")
	}

	authSvc := &auth.AuthService{
		Users:          &store.GormUserStore{DB: gdb},
		RefreshTokens:  &store.GormRefreshTokenStore{DB: gdb},
		JWTSecret:      cfg.JWTSecret,
		RefreshSecret:  cfg.RefreshSecret,
		AccessTTL:      cfg.AccessTokenTTL,
		RefreshTTL:     cfg.RefreshTokenTTL,
		BcryptCost:     cfg.BcryptCost,
		MinPasswordLen: cfg.MinPasswordLen,
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		JWTSecret:      cfg.JWTSecret,
		AuthHandler:    &handlers.AuthHandler{Svc: authSvc, Producer: producer},
		VenueHandler:   &handlers.VenueHandler{DB: gdb},
		EventHandler:   &handlers.EventHandler{DB: gdb, Producer: producer, ES: esClient, Index: cfg.EventIndex},
		BookingHandler: &handlers.BookingHandler{DB: gdb, Producer: producer},
		PageHandler:    &handlers.PageHandler{DB: gdb},
		SettingHandler: &handlers.SettingHandler{DB: gdb},
		SearchHandler:  &handlers.SearchHandler{ES: esClient, Index: cfg.EventIndex},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	logger.Info("server started", "port", cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if err := producer.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
