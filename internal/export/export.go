package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"workua-resume-bot/internal/models"
)

// SaveResults writes records as an indented JSON array. Non-ASCII and
// HTML characters are written as-is. Parent directories are created.
func SaveResults(records []models.ResumeRecord, path string) error {
	if records == nil {
		records = []models.ResumeRecord{}
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create results dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode results: %w", err)
	}
	return f.Close()
}

// FileName is the results file name for a search id.
func FileName(searchID string) string {
	return fmt.Sprintf("resumes_%s.json", searchID)
}
