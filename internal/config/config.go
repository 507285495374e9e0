// Load envs from .env
// Load YAML config
// Apply env overrides and default values

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"workua-resume-bot/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Site     SiteConfig     `yaml:"site"`
	Browser  BrowserConfig  `yaml:"browser"`
	Harvest  HarvestConfig  `yaml:"harvest"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Logger   logger.Config  `yaml:"logger"`
}

type TelegramConfig struct {
	Token string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	// MessagesPerSecond paces outgoing messages.
	MessagesPerSecond float64 `yaml:"messages_per_second"`
}

type SiteConfig struct {
	CatalogURL string `yaml:"catalog_url"`
}

type BrowserConfig struct {
	Headless       bool          `yaml:"headless" env:"HEADLESS"`
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	Timeout        time.Duration `yaml:"timeout"`
	OverlayTimeout time.Duration `yaml:"overlay_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	CookiesPath    string        `yaml:"cookies_path"`
	ScreenshotDir  string        `yaml:"screenshot_dir"`
}

type HarvestConfig struct {
	// Random pause between two resume pages, in milliseconds.
	MinDelayMs int `yaml:"min_delay_ms"`
	MaxDelayMs int `yaml:"max_delay_ms"`
}

type StorageConfig struct {
	ResultsDir  string `yaml:"results_dir"`
	CacheDir    string `yaml:"cache_dir"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
}

type ServerConfig struct {
	Port string `yaml:"port" env:"PORT"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{MessagesPerSecond: 20},
		Site:     SiteConfig{CatalogURL: "https://www.work.ua/resumes/by-category/"},
		Browser: BrowserConfig{
			Headless:       true,
			Width:          1920,
			Height:         1080,
			Timeout:        10 * time.Second,
			OverlayTimeout: 3 * time.Second,
			PollInterval:   100 * time.Millisecond,
			ScreenshotDir:  "logs/screenshots",
		},
		Harvest: HarvestConfig{MinDelayMs: 500, MaxDelayMs: 1500},
		Storage: StorageConfig{ResultsDir: "logs", CacheDir: ".cache"},
		Server:  ServerConfig{Port: "8080"},
		Logger:  logger.Config{Level: "info", Format: "pretty"},
	}
}

// Load reads .env, then the YAML file at path, then applies env
// overrides. A missing file falls back to defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn().Str("path", path).Msg("⚠️ Config file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.Telegram.Token = token
	} else if token := os.Getenv("API_TOKEN"); token != "" {
		c.Telegram.Token = token
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Storage.DatabaseURL = dsn
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logger.Level = level
	}
	if headless := os.Getenv("HEADLESS"); headless != "" {
		v, err := strconv.ParseBool(headless)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS: %w", err)
		}
		c.Browser.Headless = v
	}
	return nil
}

// fillDefaults restores defaults for zero values a partial file left behind.
func (c *Config) fillDefaults() {
	d := Default()
	if c.Site.CatalogURL == "" {
		c.Site.CatalogURL = d.Site.CatalogURL
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		c.Browser.Width, c.Browser.Height = d.Browser.Width, d.Browser.Height
	}
	if c.Browser.Timeout <= 0 {
		c.Browser.Timeout = d.Browser.Timeout
	}
	if c.Browser.OverlayTimeout <= 0 {
		c.Browser.OverlayTimeout = d.Browser.OverlayTimeout
	}
	if c.Browser.PollInterval <= 0 {
		c.Browser.PollInterval = d.Browser.PollInterval
	}
	if c.Storage.ResultsDir == "" {
		c.Storage.ResultsDir = d.Storage.ResultsDir
	}
	if c.Storage.CacheDir == "" {
		c.Storage.CacheDir = d.Storage.CacheDir
	}
	if c.Server.Port == "" {
		c.Server.Port = d.Server.Port
	}
	if c.Telegram.MessagesPerSecond <= 0 {
		c.Telegram.MessagesPerSecond = d.Telegram.MessagesPerSecond
	}
	if c.Logger.Level == "" {
		c.Logger.Level = d.Logger.Level
	}
}

// Validate reports missing or inconsistent settings.
func (c *Config) Validate(requireTelegram bool) error {
	var errs []error
	if requireTelegram && c.Telegram.Token == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	if c.Harvest.MinDelayMs < 0 || c.Harvest.MaxDelayMs < c.Harvest.MinDelayMs {
		errs = append(errs, fmt.Errorf("invalid harvest delay range %d..%d ms", c.Harvest.MinDelayMs, c.Harvest.MaxDelayMs))
	}
	if c.Browser.OverlayTimeout > c.Browser.Timeout {
		errs = append(errs, errors.New("browser.overlay_timeout must not exceed browser.timeout"))
	}
	return errors.Join(errs...)
}
