package pipeline

import (
	"context"

	"workua-resume-bot/internal/browser"
	"workua-resume-bot/internal/config"
	"workua-resume-bot/internal/database"
	"workua-resume-bot/internal/dedup"
	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/scraper"
	"workua-resume-bot/internal/scraper/workua"
)

// NewFromConfig builds a Runner backed by playwright and the work.ua
// scraper. The returned cleanup closes the database pool, if any.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Runner, func(), error) {
	launcher := browser.NewLauncher(browser.Options{
		Headless:    cfg.Browser.Headless,
		Width:       cfg.Browser.Width,
		Height:      cfg.Browser.Height,
		Timeout:     cfg.Browser.Timeout,
		CookiesFile: cfg.Browser.CookiesPath,
	})

	pause := browser.PauseFunc(cfg.Harvest.MinDelayMs, cfg.Harvest.MaxDelayMs)
	factory := func(page scraper.Page) scraper.ResumeScraper {
		return workua.New(page,
			workua.WithCatalogURL(cfg.Site.CatalogURL),
			workua.WithTimeouts(cfg.Browser.Timeout, cfg.Browser.OverlayTimeout, cfg.Browser.PollInterval),
			workua.WithPause(pause),
		)
	}

	opts := Options{
		ResultsDir:    cfg.Storage.ResultsDir,
		ScreenshotDir: cfg.Browser.ScreenshotDir,
		Cache:         dedup.NewResumeCache(cfg.Storage.CacheDir),
	}

	cleanup := func() {}
	if cfg.Storage.DatabaseURL != "" {
		repo, err := database.ConnectDB(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			repo.Close()
			return nil, nil, err
		}
		logger.Info().Msg("🗄️ Database connected")
		opts.Store = repo
		cleanup = repo.Close
	}

	return NewRunner(launcher, factory, opts), cleanup, nil
}
