package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/sohwatch/internal/api"
	"github.com/andresuchdata/sohwatch/internal/api/handlers"
	"github.com/andresuchdata/sohwatch/internal/cache"
	"github.com/andresuchdata/sohwatch/internal/config"
	"github.com/andresuchdata/sohwatch/internal/enrich"
	"github.com/andresuchdata/sohwatch/internal/rules"
	"github.com/andresuchdata/sohwatch/internal/session"
	"github.com/andresuchdata/sohwatch/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire the analysis pipeline
	engine := rules.NewEngine(cfg.Rules.PeriodLength(), nil)
	enricher := enrich.NewEnricher(engine, cfg.Rules.Workers)
	store := session.NewStore(cfg.Session.MaxSessions)
	summaryCache := cache.NewSummaryCache(cfg.Cache)

	sessions := handlers.NewSessionHandler(cfg.Rules.ForecastSuffix, engine, enricher, store, summaryCache)
	router := api.NewRouter(sessions, cfg.Server.AllowedOrigins, cfg.Server.MaxUploadMB)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("forecast_suffix", cfg.Rules.ForecastSuffix).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
