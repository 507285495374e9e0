// Package pipeline runs one resume search end to end: it opens a browser
// session, drives the site scraper through every step and post-processes
// the harvested records.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"workua-resume-bot/internal/browser"
	"workua-resume-bot/internal/export"
	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/models"
	"workua-resume-bot/internal/scraper"

	"github.com/google/uuid"
)

// Request is one search as collected from a user.
type Request struct {
	ChatID     int64
	Category   int
	Profession string
	Location   string
	Filters    models.FilterSpec
}

// Result is a finished search.
type Result struct {
	Search  models.Search
	Records []models.ResumeRecord
	// New holds the URLs not delivered by any earlier search.
	New map[string]bool
	// File is the JSON export path, empty when export is disabled or failed.
	File string
}

// ScraperFactory binds a site scraper to a session page.
type ScraperFactory func(page scraper.Page) scraper.ResumeScraper

// SeenCache remembers delivered resumes. Mark reports, by URL, which of
// the records are new.
type SeenCache interface {
	Mark(records []models.ResumeRecord) map[string]bool
}

// Store persists finished searches.
type Store interface {
	SaveSearch(ctx context.Context, search models.Search, records []models.ResumeRecord) error
}

type Options struct {
	ResultsDir    string
	ScreenshotDir string
	Cache         SeenCache
	Store         Store
}

// Runner executes searches one at a time; each gets its own browser.
type Runner struct {
	mu       sync.Mutex
	launcher scraper.Launcher
	factory  ScraperFactory
	opts     Options
	now      func() time.Time
}

func NewRunner(launcher scraper.Launcher, factory ScraperFactory, opts Options) *Runner {
	return &Runner{
		launcher: launcher,
		factory:  factory,
		opts:     opts,
		now:      time.Now,
	}
}

// Run executes req. The browser session is closed on every path.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	search := models.Search{
		ID:         uuid.NewString(),
		ChatID:     req.ChatID,
		Category:   req.Category,
		Profession: req.Profession,
		Location:   req.Location,
		Filters:    req.Filters,
		CreatedAt:  r.now(),
	}
	log := logger.With().Str("search_id", search.ID).Int64("chat_id", req.ChatID).Logger()
	log.Info().Int("category", req.Category).Str("profession", req.Profession).Str("location", req.Location).Msg("🔍 Starting search")

	session, err := r.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("⚠️ Failed to close browser session")
		}
	}()

	page := session.Page()
	records, err := r.scrape(ctx, r.factory(page), req)
	if err != nil {
		r.captureFailure(page, search.ID)
		return nil, err
	}
	log.Info().Int("resumes", len(records)).Msg("✅ Search finished")

	result := &Result{Search: search, Records: records, New: make(map[string]bool, len(records))}
	r.postProcess(ctx, result)
	return result, nil
}

func (r *Runner) scrape(ctx context.Context, s scraper.ResumeScraper, req Request) ([]models.ResumeRecord, error) {
	if err := s.SelectCategory(ctx, req.Category); err != nil {
		return nil, err
	}
	if err := s.SetProfession(ctx, req.Profession); err != nil {
		return nil, err
	}
	if err := s.SetLocation(ctx, req.Location); err != nil {
		return nil, err
	}
	if err := s.ApplyFilters(ctx, req.Filters); err != nil {
		return nil, err
	}
	return s.HarvestResults(ctx)
}

// postProcess flags new resumes, exports and persists. Failures are logged.
func (r *Runner) postProcess(ctx context.Context, result *Result) {
	var fresh map[string]bool
	if r.opts.Cache != nil {
		fresh = r.opts.Cache.Mark(result.Records)
	}
	for _, rec := range result.Records {
		result.New[rec.URL] = r.opts.Cache == nil || fresh[rec.URL]
	}

	if r.opts.ResultsDir != "" {
		path := filepath.Join(r.opts.ResultsDir, export.FileName(result.Search.ID))
		if err := export.SaveResults(result.Records, path); err != nil {
			logger.Error().Err(err).Str("path", path).Msg("❌ Failed to export results")
		} else {
			result.File = path
			logger.Info().Str("path", path).Msg("💾 Results exported")
		}
	}

	if r.opts.Store != nil {
		if err := r.opts.Store.SaveSearch(ctx, result.Search, result.Records); err != nil {
			logger.Error().Err(err).Str("search_id", result.Search.ID).Msg("❌ Failed to persist search")
		}
	}
}

func (r *Runner) captureFailure(page scraper.Page, searchID string) {
	if r.opts.ScreenshotDir == "" || page == nil {
		return
	}
	debugger := browser.NewScreenShotDebugger(r.opts.ScreenshotDir, page)
	if _, err := debugger.CaptureAndLog("search_"+searchID, "Search failed, capturing page"); err != nil {
		logger.Debug().Err(err).Msg("Failure screenshot skipped")
	}
}

// Categories returns the live category list.
func (r *Runner) Categories(ctx context.Context) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("⚠️ Failed to close browser session")
		}
	}()

	return r.factory(session.Page()).ListCategories(ctx)
}
