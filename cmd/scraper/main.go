package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workua-resume-bot/internal/config"
	"workua-resume-bot/internal/export"
	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/models"
	"workua-resume-bot/internal/pipeline"

	"github.com/spf13/pflag"
)

// One-shot search from the command line, without Telegram.
func main() {
	configPath := pflag.StringP("config", "c", config.DefaultPath, "path to the YAML config")
	listOnly := pflag.Bool("list-categories", false, "print the live category list and exit")
	category := pflag.Int("category", 1, "1-based category index")
	profession := pflag.String("profession", "", "profession to search for")
	location := pflag.String("location", "", "city to search in")
	filtersJSON := pflag.String("filters", "", `filters as JSON, e.g. '{"gender":["female"],"salary":{"from":15000}}'`)
	out := pflag.StringP("out", "o", "", "write results to this JSON file instead of stdout")
	timeout := pflag.Duration("timeout", 10*time.Minute, "overall run timeout")
	pflag.Parse()

	//load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to load config")
	}
	logger.Init(cfg.Logger)

	var filters models.FilterSpec
	if *filtersJSON != "" {
		if err := json.Unmarshal([]byte(*filtersJSON), &filters); err != nil {
			logger.Fatal().Err(err).Msg("❌ Invalid --filters")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	runner, cleanup, err := pipeline.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to init search pipeline")
	}
	defer cleanup()

	if *listOnly {
		categories, err := runner.Categories(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("❌ Failed to load categories")
		}
		for _, c := range categories {
			fmt.Printf("%2d. %s\n", c.Index, c.Name)
		}
		return
	}

	result, err := runner.Run(ctx, pipeline.Request{
		Category:   *category,
		Profession: *profession,
		Location:   *location,
		Filters:    filters,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("❌ Search failed")
	}
	logger.Info().Int("resumes", len(result.Records)).Str("search_id", result.Search.ID).Msg("📦 Search complete")

	if *out != "" {
		if err := export.SaveResults(result.Records, *out); err != nil {
			logger.Fatal().Err(err).Msg("❌ Failed to save results")
		}
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Records); err != nil {
		logger.Fatal().Err(err).Msg("❌ Failed to print results")
	}
}
