package workua

import (
	"context"
	"fmt"
	"strconv"

	"workua-resume-bot/internal/logger"
	"workua-resume-bot/internal/models"
	"workua-resume-bot/internal/wait"
)

// ApplyFilters applies every present filter group in a fixed order.
// Unknown values and salary amounts without a bracket are skipped. The
// first failing group aborts the call.
func (s *Scraper) ApplyFilters(ctx context.Context, spec models.FilterSpec) error {
	groups := []struct {
		kind  models.FilterKind
		apply func(context.Context) error
	}{
		{models.FilterSearchParams, func(ctx context.Context) error {
			return s.applyCheckboxes(ctx, models.FilterSearchParams, spec.SearchParams)
		}},
		{models.FilterEmployment, func(ctx context.Context) error {
			return s.applyCheckboxes(ctx, models.FilterEmployment, spec.Employment)
		}},
		{models.FilterAge, func(ctx context.Context) error {
			return s.applyAge(ctx, spec.Age)
		}},
		{models.FilterGender, func(ctx context.Context) error {
			return s.applyCheckboxes(ctx, models.FilterGender, spec.Gender)
		}},
		{models.FilterSalary, func(ctx context.Context) error {
			return s.applySalary(ctx, spec.Salary)
		}},
		{models.FilterEducation, func(ctx context.Context) error {
			return s.applyCheckboxes(ctx, models.FilterEducation, spec.Education)
		}},
		{models.FilterExperience, func(ctx context.Context) error {
			return s.applyCheckboxes(ctx, models.FilterExperience, spec.Experience)
		}},
	}

	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.apply(ctx); err != nil {
			logger.Error().Err(err).Str("filter", string(g.kind)).Msg("❌ Error applying filters")
			return fmt.Errorf("apply %s filters: %w", g.kind, err)
		}
	}
	return nil
}

func (s *Scraper) applyCheckboxes(ctx context.Context, kind models.FilterKind, values []string) error {
	for _, v := range values {
		sel, ok := s.locators.Checkbox(kind, v)
		if !ok {
			logger.Debug().Str("filter", string(kind)).Str("value", v).Msg("Unknown filter value ignored")
			continue
		}
		if err := s.ensureChecked(ctx, sel); err != nil {
			return fmt.Errorf("%s: %w", v, err)
		}
	}
	return nil
}

func (s *Scraper) applyAge(ctx context.Context, age *models.AgeRange) error {
	if age == nil {
		return nil
	}
	if age.From != nil {
		if err := s.selectBound(ctx, models.FilterAge, From, strconv.Itoa(*age.From)); err != nil {
			return fmt.Errorf("from: %w", err)
		}
	}
	if age.To != nil {
		if err := s.selectBound(ctx, models.FilterAge, To, strconv.Itoa(*age.To)); err != nil {
			return fmt.Errorf("to: %w", err)
		}
	}
	return nil
}

func (s *Scraper) applySalary(ctx context.Context, salary *models.SalaryRange) error {
	if salary == nil {
		return nil
	}
	bounds := []struct {
		bound  Bound
		amount *int
	}{
		{From, salary.From},
		{To, salary.To},
	}
	for _, b := range bounds {
		if b.amount == nil {
			continue
		}
		bracket, ok := s.locators.SalaryBracket(*b.amount)
		if !ok {
			logger.Debug().Int("amount", *b.amount).Msg("Salary amount has no bracket, skipped")
			continue
		}
		if err := s.selectBound(ctx, models.FilterSalary, b.bound, bracket); err != nil {
			return fmt.Errorf("bound %d: %w", *b.amount, err)
		}
	}
	if salary.NotSpecified {
		return s.applyCheckboxes(ctx, models.FilterSalary, []string{NotSpecifiedSalary})
	}
	return nil
}

// ensureChecked clicks the checkbox only when it is not already checked,
// so applying the same spec twice leaves the page unchanged.
func (s *Scraper) ensureChecked(ctx context.Context, sel string) error {
	checked, err := s.page.IsChecked(sel)
	if err != nil {
		return err
	}
	if checked {
		return nil
	}
	return s.withStabilityWait(ctx, func() error {
		return s.page.Click(sel)
	})
}

func (s *Scraper) selectBound(ctx context.Context, kind models.FilterKind, b Bound, value string) error {
	sel, ok := s.locators.Dropdown(kind, b)
	if !ok {
		return nil
	}
	return s.withStabilityWait(ctx, func() error {
		return s.page.SelectOption(sel, value)
	})
}

// withStabilityWait runs action and then blocks until the listing has
// re-rendered. Detection failures are logged, not returned: the filter
// may have applied even if no change was seen.
func (s *Scraper) withStabilityWait(ctx context.Context, action func() error) error {
	before, err := s.page.Content()
	haveBaseline := err == nil
	if err != nil {
		logger.Debug().Err(err).Msg("Could not snapshot page before filter change")
	}
	if err := action(); err != nil {
		return err
	}

	// without a snapshot, the first readable content becomes the baseline
	changed := wait.Until(ctx, func() bool {
		current, err := s.page.Content()
		if err != nil {
			return false
		}
		if !haveBaseline {
			before, haveBaseline = current, true
			return false
		}
		return current != before
	}, s.timeout, s.pollInterval)
	if !changed {
		logger.Warn().Dur("timeout", s.timeout).Msg("⚠️ Page update timeout - continuing anyway")
		return nil
	}

	// the overlay shows up only sometimes
	if err := s.page.WaitDetached(s.locators.Element(LoadingOverlay), s.overlayTimeout); err != nil {
		logger.Debug().Err(err).Msg("Loading overlay still present, continuing")
	}
	return nil
}
