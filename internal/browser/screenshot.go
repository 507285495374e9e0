package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"workua-resume-bot/internal/logger"
)

// screenshotter is anything that can save a full-page screenshot.
type screenshotter interface {
	Screenshot(path string) error
}

// ScreenShotDebugger saves debug screenshots of a page.
type ScreenShotDebugger struct {
	outputDir string
	page      screenshotter
}

func NewScreenShotDebugger(dir string, page screenshotter) *ScreenShotDebugger {
	if dir == "" {
		dir = filepath.Join(".", "logs", "screenshots")
	}
	return &ScreenShotDebugger{outputDir: dir, page: page}
}

// CaptureAndLog writes <name>_<timestamp>.png and returns its path.
func (s *ScreenShotDebugger) CaptureAndLog(name, message string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	logger.Info().Msgf("📸 %s", message)

	if err := s.page.Screenshot(path); err != nil {
		logger.Warn().Err(err).Msg("⚠️ Failed to capture screenshot")
		return "", err
	}

	logger.Info().Str("path", path).Msg("Screenshot saved")
	return path, nil
}
