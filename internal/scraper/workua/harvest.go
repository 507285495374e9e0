package workua

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/models"
	"workua-resume-bot/internal/scraper"
)

const categoryPathMarker = "/resumes/by-"

// HarvestResults opens every resume linked from the current listing and
// extracts its fields. A resume that fails to load or parse is logged
// and skipped. The returned slice is never nil.
func (s *Scraper) HarvestResults(ctx context.Context) ([]models.ResumeRecord, error) {
	links, err := s.page.Links(s.locators.Element(ResumeLinks))
	if err != nil {
		return nil, fmt.Errorf("read resume links: %w", err)
	}
	// the first match is a navigation anchor, not a resume
	if len(links) > 0 {
		links = links[1:]
	}

	base := s.page.URL()
	records := make([]models.ResumeRecord, 0, len(links))
	opened := 0
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		if link.Href == "" || strings.Contains(link.Href, categoryPathMarker) {
			continue
		}
		if opened > 0 && s.pause != nil {
			s.pause()
		}
		opened++

		target := resolveURL(base, link.Href)
		record, err := s.harvestOne(target)
		if err != nil {
			logger.Error().Err(err).Str("url", target).Msg("⚠️ Error parsing resume")
			continue
		}
		records = append(records, record)
		logger.Debug().Str("name", record.Name).Str("url", target).Msg("✅ Resume parsed")
	}

	logger.Info().Int("resumes", len(records)).Int("links", len(links)).Msg("📦 Harvest finished")
	return records, nil
}

// harvestOne reads a single resume in its own tab. The tab is closed and
// the listing brought back to front whatever happens.
func (s *Scraper) harvestOne(target string) (record models.ResumeRecord, err error) {
	tab, err := s.page.OpenTab(target)
	if err != nil {
		return record, &scraper.ExtractionError{URL: target, Err: err}
	}
	defer func() {
		if cerr := tab.Close(); cerr != nil {
			logger.Warn().Err(cerr).Str("url", target).Msg("Failed to close resume tab")
		}
		if ferr := s.page.BringToFront(); ferr != nil {
			logger.Warn().Err(ferr).Msg("Failed to restore listing page")
		}
	}()

	record, err = extractResume(tab, s.locators, target)
	if err != nil {
		return record, &scraper.ExtractionError{URL: target, Err: err}
	}
	return record, nil
}

func extractResume(tab scraper.Page, l LocatorResolver, target string) (models.ResumeRecord, error) {
	updated, err := tab.Attribute(l.Element(ResumeUpdated), "datetime")
	if err != nil {
		return models.ResumeRecord{}, fmt.Errorf("update date: %w", err)
	}
	name, err := tab.Text(l.Element(ResumeTitle))
	if err != nil {
		return models.ResumeRecord{}, fmt.Errorf("name: %w", err)
	}
	headline, err := tab.Text(l.Element(ResumeHeadline))
	if err != nil {
		return models.ResumeRecord{}, fmt.Errorf("headline: %w", err)
	}
	specialization, salary, err := splitHeadline(headline)
	if err != nil {
		return models.ResumeRecord{}, err
	}

	return models.ResumeRecord{
		UpdateDate:     strings.TrimSpace(updated),
		Name:           strings.TrimSpace(name),
		Specialization: specialization,
		Salary:         salary,
		URL:            target,
	}, nil
}

var errNoSalary = errors.New("headline has no salary part")

// splitHeadline splits "specialization, salary" on the first comma.
func splitHeadline(headline string) (specialization, salary string, err error) {
	spec, rest, found := strings.Cut(headline, ",")
	if !found {
		return "", "", fmt.Errorf("%w: %q", errNoSalary, headline)
	}
	return strings.TrimSpace(spec), strings.TrimSpace(rest), nil
}
