package browser

import (
	"errors"
	"fmt"
	"time"

	"workua-resume-bot/internal/scraper"

	"github.com/playwright-community/playwright-go"
)

// Page adapts a playwright page to scraper.Page.
type Page struct {
	page    playwright.Page
	timeout *float64
}

func newPage(p playwright.Page, timeout time.Duration) *Page {
	pg := &Page{page: p}
	if timeout > 0 {
		pg.timeout = playwright.Float(millis(timeout))
	}
	return pg
}

// wrapErr maps playwright timeouts onto scraper.ErrNavigationTimeout.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %v", scraper.ErrNavigationTimeout, err)
	}
	return err
}

func (p *Page) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   p.timeout,
	})
	return wrapErr(err)
}

func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) Content() (string, error) {
	content, err := p.page.Content()
	return content, wrapErr(err)
}

func (p *Page) Links(selector string) ([]scraper.Link, error) {
	anchors, err := p.page.Locator(selector).All()
	if err != nil {
		return nil, wrapErr(err)
	}
	links := make([]scraper.Link, 0, len(anchors))
	for _, a := range anchors {
		href, err := a.GetAttribute("href", playwright.LocatorGetAttributeOptions{Timeout: p.timeout})
		if err != nil {
			return nil, wrapErr(err)
		}
		text, err := a.TextContent(playwright.LocatorTextContentOptions{Timeout: p.timeout})
		if err != nil {
			return nil, wrapErr(err)
		}
		links = append(links, scraper.Link{Text: text, Href: href})
	}
	return links, nil
}

// first waits for the element to be attached, like a presence wait.
func (p *Page) first(selector string) (playwright.Locator, error) {
	loc := p.page.Locator(selector).First()
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: p.timeout,
	}); err != nil {
		return nil, wrapErr(err)
	}
	return loc, nil
}

func (p *Page) IsChecked(selector string) (bool, error) {
	loc, err := p.first(selector)
	if err != nil {
		return false, err
	}
	checked, err := loc.IsChecked(playwright.LocatorIsCheckedOptions{Timeout: p.timeout})
	return checked, wrapErr(err)
}

func (p *Page) Click(selector string) error {
	loc, err := p.first(selector)
	if err != nil {
		return err
	}
	return wrapErr(loc.Click(playwright.LocatorClickOptions{Timeout: p.timeout}))
}

func (p *Page) SelectOption(selector, value string) error {
	loc, err := p.first(selector)
	if err != nil {
		return err
	}
	_, err = loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}},
		playwright.LocatorSelectOptionOptions{Timeout: p.timeout})
	return wrapErr(err)
}

func (p *Page) Type(selector, text string) error {
	loc, err := p.first(selector)
	if err != nil {
		return err
	}
	return wrapErr(loc.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{Timeout: p.timeout}))
}

func (p *Page) Clear(selector string) error {
	loc, err := p.first(selector)
	if err != nil {
		return err
	}
	for _, key := range []string{"Control+A", "Delete"} {
		if err := loc.Press(key, playwright.LocatorPressOptions{Timeout: p.timeout}); err != nil {
			return wrapErr(err)
		}
	}
	return nil
}

func (p *Page) WaitDetached(selector string, timeout time.Duration) error {
	return wrapErr(p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateDetached,
		Timeout: playwright.Float(millis(timeout)),
	}))
}

func (p *Page) Attribute(selector, name string) (string, error) {
	loc, err := p.first(selector)
	if err != nil {
		return "", err
	}
	v, err := loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: p.timeout})
	return v, wrapErr(err)
}

func (p *Page) Text(selector string) (string, error) {
	loc, err := p.first(selector)
	if err != nil {
		return "", err
	}
	v, err := loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: p.timeout})
	return v, wrapErr(err)
}

// OpenTab opens url in a new tab of the same context. The current page
// stays open.
func (p *Page) OpenTab(url string) (scraper.Page, error) {
	tab, err := p.page.Context().NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not open tab: %w", err)
	}
	opened := &Page{page: tab, timeout: p.timeout}
	if err := opened.Goto(url); err != nil {
		_ = tab.Close()
		return nil, err
	}
	return opened, nil
}

func (p *Page) BringToFront() error {
	return wrapErr(p.page.BringToFront())
}

func (p *Page) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return wrapErr(err)
}

func (p *Page) Close() error {
	return p.page.Close()
}
