package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workua-resume-bot/internal/api"
	"workua-resume-bot/internal/config"
	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultPath, "path to the YAML config")
	port := pflag.StringP("port", "p", "", "listen port (overrides config and PORT)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	logger.Init(cfg.Logger)
	if err := cfg.Validate(false); err != nil {
		logger.Fatal().Err(err).Msg("❌ Invalid config")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := pipeline.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to init search pipeline")
	}
	defer cleanup()

	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: api.NewHandler(runner).Router(),
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("❌ Server shutdown failed")
	}
}
