package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"workua-resume-bot/internal/config"
	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/pipeline"
	"workua-resume-bot/internal/telegram"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", config.DefaultPath, "path to the YAML config")
	pflag.Parse()

	//load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	logger.Init(cfg.Logger)
	if err := cfg.Validate(true); err != nil {
		logger.Fatal().Err(err).Msg("❌ Invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, cleanup, err := pipeline.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to init search pipeline")
	}
	defer cleanup()

	//init telegram bot
	bot, err := telegram.NewBot(cfg.Telegram.Token, runner, cfg.Telegram.MessagesPerSecond)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to init Telegram Bot")
	}

	logger.Info().Msg("🚀 Starting work.ua resume bot...")
	if err := bot.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("❌ Bot stopped with error")
	}
	logger.Info().Msg("👋 Bye")
}
