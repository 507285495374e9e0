package workua

import (
	"errors"
	"fmt"
	"time"

	"workua-resume-bot/internal/scraper"
)

var errNoElement = fmt.Errorf("%w: element not found", scraper.ErrNavigationTimeout)

// fakePage is an in-memory scraper.Page. Clicking a checkbox toggles it
// and, when rerender is set, changes the rendered content.
type fakePage struct {
	url      string
	rerender bool
	version  int

	links   map[string][]scraper.Link
	checked map[string]bool
	attrs   map[string]string
	texts   map[string]string
	values  map[string]string
	tabs    map[string]*fakePage
	failOn  map[string]error

	gotos         []string
	clicks        []string
	selects       []string
	typed         []string
	clears        []string
	overlayWaits  int
	contentCalls  int
	contentFails  int
	fronts        int
	closed        bool
	openedTabURLs []string
}

func newFakePage(url string) *fakePage {
	return &fakePage{
		url:      url,
		rerender: true,
		links:    map[string][]scraper.Link{},
		checked:  map[string]bool{},
		attrs:    map[string]string{},
		texts:    map[string]string{},
		values:   map[string]string{},
		tabs:     map[string]*fakePage{},
		failOn:   map[string]error{},
	}
}

func (p *fakePage) fail(op, selector string) error {
	if err, ok := p.failOn[op+" "+selector]; ok {
		return err
	}
	return nil
}

func (p *fakePage) Goto(url string) error {
	if err := p.fail("goto", url); err != nil {
		return err
	}
	p.gotos = append(p.gotos, url)
	p.url = url
	p.version++
	return nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Content() (string, error) {
	p.contentCalls++
	if p.contentFails > 0 {
		p.contentFails--
		return "", errors.New("execution context was destroyed")
	}
	return fmt.Sprintf("<html><body data-v=%d></body></html>", p.version), nil
}

func (p *fakePage) Links(selector string) ([]scraper.Link, error) {
	if err := p.fail("links", selector); err != nil {
		return nil, err
	}
	return p.links[selector], nil
}

func (p *fakePage) IsChecked(selector string) (bool, error) {
	if err := p.fail("checked", selector); err != nil {
		return false, err
	}
	return p.checked[selector], nil
}

func (p *fakePage) Click(selector string) error {
	if err := p.fail("click", selector); err != nil {
		return err
	}
	p.clicks = append(p.clicks, selector)
	p.checked[selector] = !p.checked[selector]
	if p.rerender {
		p.version++
	}
	return nil
}

func (p *fakePage) SelectOption(selector, value string) error {
	if err := p.fail("select", selector); err != nil {
		return err
	}
	p.selects = append(p.selects, selector+"="+value)
	if p.values[selector] != value && p.rerender {
		p.version++
	}
	p.values[selector] = value
	return nil
}

func (p *fakePage) Type(selector, text string) error {
	if err := p.fail("type", selector); err != nil {
		return err
	}
	p.typed = append(p.typed, selector+"="+text)
	p.values[selector] += text
	return nil
}

func (p *fakePage) Clear(selector string) error {
	p.clears = append(p.clears, selector)
	p.values[selector] = ""
	return nil
}

func (p *fakePage) WaitDetached(selector string, timeout time.Duration) error {
	p.overlayWaits++
	return p.fail("detached", selector)
}

func (p *fakePage) Attribute(selector, name string) (string, error) {
	v, ok := p.attrs[selector+"@"+name]
	if !ok {
		return "", errNoElement
	}
	return v, nil
}

func (p *fakePage) Text(selector string) (string, error) {
	v, ok := p.texts[selector]
	if !ok {
		return "", errNoElement
	}
	return v, nil
}

func (p *fakePage) OpenTab(url string) (scraper.Page, error) {
	p.openedTabURLs = append(p.openedTabURLs, url)
	tab, ok := p.tabs[url]
	if !ok {
		return nil, errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	tab.url = url
	return tab, nil
}

func (p *fakePage) BringToFront() error {
	p.fronts++
	return nil
}

func (p *fakePage) Screenshot(path string) error { return nil }

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}
