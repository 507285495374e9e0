package workua

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/models"
	"workua-resume-bot/internal/scraper"
)

const (
	// CatalogURL lists the resume categories.
	CatalogURL = "https://www.work.ua/resumes/by-category/"

	DefaultTimeout        = 10 * time.Second
	DefaultOverlayTimeout = 3 * time.Second
	DefaultPollInterval   = 100 * time.Millisecond
)

// Scraper drives the work.ua resume listing through a single page.
// It is not safe for concurrent use.
type Scraper struct {
	page           scraper.Page
	locators       LocatorResolver
	catalogURL     string
	timeout        time.Duration
	overlayTimeout time.Duration
	pollInterval   time.Duration
	pause          func()
}

// Option customises a Scraper.
type Option func(*Scraper)

// WithLocators replaces the site selectors.
func WithLocators(l LocatorResolver) Option {
	return func(s *Scraper) { s.locators = l }
}

// WithCatalogURL overrides the category listing URL.
func WithCatalogURL(u string) Option {
	return func(s *Scraper) {
		if u != "" {
			s.catalogURL = u
		}
	}
}

// WithTimeouts sets the page stability timeout, the loading overlay
// timeout and the polling interval. Non-positive values keep the defaults.
func WithTimeouts(timeout, overlay, poll time.Duration) Option {
	return func(s *Scraper) {
		if timeout > 0 {
			s.timeout = timeout
		}
		if overlay > 0 {
			s.overlayTimeout = overlay
		}
		if poll > 0 {
			s.pollInterval = poll
		}
	}
}

// WithPause sets a hook called between two resume detail pages.
func WithPause(pause func()) Option {
	return func(s *Scraper) { s.pause = pause }
}

func New(page scraper.Page, opts ...Option) *Scraper {
	s := &Scraper{
		page:           page,
		locators:       DefaultLocators(),
		catalogURL:     CatalogURL,
		timeout:        DefaultTimeout,
		overlayTimeout: DefaultOverlayTimeout,
		pollInterval:   DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scraper) Name() string {
	return "work.ua"
}

// ListCategories loads the catalog page and returns its categories in
// document order, numbered from 1.
func (s *Scraper) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.page.Goto(s.catalogURL); err != nil {
		return nil, fmt.Errorf("open category catalog: %w", err)
	}

	links, err := s.page.Links(s.locators.Element(CategoryLinks))
	if err != nil {
		return nil, fmt.Errorf("read category links: %w", err)
	}

	categories := make([]models.Category, 0, len(links))
	for i, link := range links {
		categories = append(categories, models.Category{
			Name:  strings.TrimSpace(link.Text),
			URL:   resolveURL(s.page.URL(), link.Href),
			Index: i + 1,
		})
	}
	logger.Debug().Int("count", len(categories)).Msg("📂 Categories resolved")
	return categories, nil
}

// SelectCategory resolves the live category list and opens the category
// at the 1-based index.
func (s *Scraper) SelectCategory(ctx context.Context, index int) error {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return err
	}
	if index < 1 || index > len(categories) {
		return fmt.Errorf("%w: category index should be between 1 and %d, got %d", scraper.ErrOutOfRange, len(categories), index)
	}

	selected := categories[index-1]
	logger.Info().Int("index", index).Str("category", selected.Name).Msg("📂 Opening category")
	if err := s.page.Goto(selected.URL); err != nil {
		return fmt.Errorf("open category %q: %w", selected.Name, err)
	}
	return nil
}

// SetProfession types into the search field. The current value is kept.
func (s *Scraper) SetProfession(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.page.Type(s.locators.Element(ProfessionInput), text); err != nil {
		return fmt.Errorf("enter profession: %w", err)
	}
	return nil
}

// SetLocation replaces the city field value. The page pre-fills it, so
// the field is cleared first.
func (s *Scraper) SetLocation(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sel := s.locators.Element(CityInput)
	if err := s.page.Click(sel); err != nil {
		return fmt.Errorf("focus city field: %w", err)
	}
	if err := s.page.Clear(sel); err != nil {
		return fmt.Errorf("clear city field: %w", err)
	}
	if err := s.page.Type(sel, text); err != nil {
		return fmt.Errorf("enter location: %w", err)
	}
	return nil
}

// resolveURL makes href absolute against base. Unparseable input is
// returned unchanged.
func resolveURL(base, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" {
		return href
	}
	return b.ResolveReference(ref).String()
}
