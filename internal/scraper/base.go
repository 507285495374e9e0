// Contracts shared by the browser adapter and the site scrapers.

package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workua-resume-bot/internal/models"
)

var (
	// ErrOutOfRange is returned when a category index is outside the live list.
	ErrOutOfRange = errors.New("category index out of range")
	// ErrNavigationTimeout is returned when an element or page never showed up in time.
	ErrNavigationTimeout = errors.New("navigation timeout")
)

// ExtractionError is a failure to read one resume detail page.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract resume %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Link is an anchor found on a page. Href is the raw attribute value.
type Link struct {
	Text string
	Href string
}

// Page is the subset of browser interaction the scrapers rely on.
// Element lookups wait up to the session timeout unless stated otherwise.
type Page interface {
	Goto(url string) error
	URL() string
	// Content returns the current rendered HTML.
	Content() (string, error)
	// Links returns the anchors currently matching selector, without waiting.
	Links(selector string) ([]Link, error)
	IsChecked(selector string) (bool, error)
	Click(selector string) error
	SelectOption(selector, value string) error
	// Type appends text to the field without clearing it.
	Type(selector, text string) error
	// Clear selects the field content and deletes it.
	Clear(selector string) error
	// WaitDetached blocks until no element matches selector or timeout.
	WaitDetached(selector string, timeout time.Duration) error
	Attribute(selector, name string) (string, error)
	Text(selector string) (string, error)
	// OpenTab loads url in a new tab of the same browser context.
	OpenTab(url string) (Page, error)
	BringToFront() error
	Screenshot(path string) error
	Close() error
}

// Session owns one browser with a single active listing page.
type Session interface {
	Page() Page
	Close() error
}

// Launcher starts browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// ResumeScraper drives one resume listing site.
type ResumeScraper interface {
	Name() string
	ListCategories(ctx context.Context) ([]models.Category, error)
	SelectCategory(ctx context.Context, index int) error
	SetProfession(ctx context.Context, text string) error
	SetLocation(ctx context.Context, text string) error
	ApplyFilters(ctx context.Context, spec models.FilterSpec) error
	HarvestResults(ctx context.Context) ([]models.ResumeRecord, error)
}
