package dedup

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/models"
)

const (
	cacheFile = "seen_resumes.json"
	retention = 30 * 24 * time.Hour
)

// seenResume is what the cache keeps per resume URL. A resume whose
// update date moves on counts as new again.
type seenResume struct {
	URL        string    `json:"url"`
	UpdateDate string    `json:"update_date"`
	FirstSeen  time.Time `json:"first_seen"`
	LastSeen   time.Time `json:"last_seen"`
}

// ResumeCache tracks which resumes were already delivered. Entries not
// observed for thirty days are forgotten.
type ResumeCache struct {
	mu      sync.Mutex
	path    string
	resumes map[string]seenResume
	now     func() time.Time
}

// NewResumeCache loads the cache stored under dir, creating dir if needed.
func NewResumeCache(dir string) *ResumeCache {
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("⚠️ Failed to create cache directory")
	}
	rc := &ResumeCache{
		path:    filepath.Join(dir, cacheFile),
		resumes: make(map[string]seenResume),
		now:     time.Now,
	}
	rc.load()
	return rc
}

// Mark records every resume as delivered and reports, by URL, which of
// them are new: never seen, or re-published with a different update date.
func (rc *ResumeCache) Mark(records []models.ResumeRecord) map[string]bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	now := rc.now().UTC()
	fresh := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.URL == "" {
			continue
		}
		prev, known := rc.resumes[rec.URL]
		isNew := !known || prev.UpdateDate != rec.UpdateDate
		// a duplicate link in the same batch keeps its first verdict
		if _, dup := fresh[rec.URL]; !dup {
			fresh[rec.URL] = isNew
		}
		if isNew {
			prev.FirstSeen = now
		}
		prev.URL = rec.URL
		prev.UpdateDate = rec.UpdateDate
		prev.LastSeen = now
		rc.resumes[rec.URL] = prev
	}

	if len(fresh) > 0 {
		rc.save()
	}
	return fresh
}

func (rc *ResumeCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.resumes)
}

func (rc *ResumeCache) load() {
	data, err := os.ReadFile(rc.path)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	if err != nil {
		logger.Warn().Err(err).Str("path", rc.path).Msg("⚠️ Failed to read seen resumes")
		return
	}

	var stored []seenResume
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warn().Err(err).Str("path", rc.path).Msg("⚠️ Seen resumes file is corrupt, starting empty")
		return
	}

	cutoff := rc.now().Add(-retention)
	for _, r := range stored {
		if r.URL == "" || r.LastSeen.Before(cutoff) {
			continue
		}
		rc.resumes[r.URL] = r
	}
	logger.Info().
		Int("kept", len(rc.resumes)).
		Int("expired", len(stored)-len(rc.resumes)).
		Msg("📋 Seen resumes loaded")
}

// save replaces the cache file via rename.
func (rc *ResumeCache) save() {
	stored := make([]seenResume, 0, len(rc.resumes))
	for _, r := range rc.resumes {
		stored = append(stored, r)
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		logger.Warn().Err(err).Msg("⚠️ Failed to encode seen resumes")
		return
	}

	tmp := rc.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		logger.Warn().Err(err).Str("path", tmp).Msg("⚠️ Failed to write seen resumes")
		return
	}
	if err := os.Rename(tmp, rc.path); err != nil {
		logger.Warn().Err(err).Str("path", rc.path).Msg("⚠️ Failed to replace seen resumes")
		return
	}
	logger.Debug().Int("resumes", len(stored)).Msg("💾 Seen resumes saved")
}
