package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/scraper"

	"github.com/playwright-community/playwright-go"
)

// Options configures the launched browser.
type Options struct {
	Headless bool
	Width    int
	Height   int
	Args     []string
	// Timeout bounds every element wait and navigation.
	Timeout time.Duration
	// CookiesFile is an optional JSON export of cookies to preload.
	CookiesFile string
}

// DefaultArgs are the Chromium flags used when Options.Args is empty.
var DefaultArgs = []string{"--no-sandbox", "--disable-gpu", "--disable-dev-shm-usage"}

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

// NewPlaywright starts the playwright driver and launches Chromium.
func NewPlaywright(ctx context.Context, opts Options) (*PlaywrightManager, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(opts.Args) == 0 {
		opts.Args = DefaultArgs
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     opts.Args,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}

	return &PlaywrightManager{pw: pw, browser: browser, opts: opts}, nil
}

// NewContext creates an isolated browser context preloaded with cookies.
func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if pm.opts.Width > 0 && pm.opts.Height > 0 {
		ctxOpts.Viewport = &playwright.Size{Width: pm.opts.Width, Height: pm.opts.Height}
	}

	browserCtx, err := pm.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	if len(cookies) > 0 {
		if err := browserCtx.AddCookies(cookies); err != nil {
			_ = browserCtx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}
	if pm.opts.Timeout > 0 {
		browserCtx.SetDefaultTimeout(millis(pm.opts.Timeout))
		browserCtx.SetDefaultNavigationTimeout(millis(pm.opts.Timeout))
	}
	return browserCtx, nil
}

// Close shuts the browser down and stops the driver process.
func (pm *PlaywrightManager) Close() error {
	var errs []error
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if pm.pw != nil {
		if err := pm.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Session is one browser with one listing page. Close releases everything.
type Session struct {
	manager    *PlaywrightManager
	browserCtx playwright.BrowserContext
	page       *Page
}

func (s *Session) Page() scraper.Page {
	return s.page
}

func (s *Session) Close() error {
	var errs []error
	if s.browserCtx != nil {
		if err := s.browserCtx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser context: %w", err))
		}
	}
	if err := s.manager.Close(); err != nil {
		errs = append(errs, err)
	}
	logger.Debug().Msg("🧹 Browser session closed")
	return errors.Join(errs...)
}

// Launcher starts a fresh browser for every session.
type Launcher struct {
	Options Options
}

func NewLauncher(opts Options) *Launcher {
	return &Launcher{Options: opts}
}

// Launch starts playwright, Chromium, a context and a page. On any
// failure everything already started is torn down.
func (l *Launcher) Launch(ctx context.Context) (scraper.Session, error) {
	var cookies []playwright.OptionalCookie
	if l.Options.CookiesFile != "" {
		loaded, err := LoadCookies(l.Options.CookiesFile)
		if err != nil {
			logger.Warn().Err(err).Str("file", l.Options.CookiesFile).Msg("⚠️ Could not load cookies. Continuing.")
		} else {
			logger.Info().Int("count", len(loaded)).Msg("🍪 Loaded cookies")
			cookies = loaded
		}
	}

	pm, err := NewPlaywright(ctx, l.Options)
	if err != nil {
		return nil, err
	}

	browserCtx, err := pm.NewContext(cookies)
	if err != nil {
		_ = pm.Close()
		return nil, err
	}

	pwPage, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		_ = pm.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}

	logger.Info().Bool("headless", l.Options.Headless).Msg("✅ Browser initialized")
	return &Session{
		manager:    pm,
		browserCtx: browserCtx,
		page:       newPage(pwPage, l.Options.Timeout),
	}, nil
}

func millis(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}
