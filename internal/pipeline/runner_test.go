package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"workua-resume-bot/internal/models"
	"workua-resume-bot/internal/scraper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPage only supports screenshots; other calls panic on the nil embed.
type stubPage struct {
	scraper.Page
	shots []string
}

func (p *stubPage) Screenshot(path string) error {
	p.shots = append(p.shots, path)
	return os.WriteFile(path, []byte("png"), 0644)
}

type fakeSession struct {
	page   *stubPage
	closed int
}

func (s *fakeSession) Page() scraper.Page { return s.page }
func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

type fakeLauncher struct {
	session  *fakeSession
	err      error
	launches int
}

func (l *fakeLauncher) Launch(ctx context.Context) (scraper.Session, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

type fakeScraper struct {
	calls      []string
	failAt     string
	records    []models.ResumeRecord
	categories []models.Category
	gotFilters models.FilterSpec
}

func (f *fakeScraper) step(name string) error {
	f.calls = append(f.calls, name)
	if f.failAt == name {
		return errors.New(name + " failed")
	}
	return nil
}

func (f *fakeScraper) Name() string { return "fake" }
func (f *fakeScraper) ListCategories(ctx context.Context) ([]models.Category, error) {
	return f.categories, f.step("categories")
}
func (f *fakeScraper) SelectCategory(ctx context.Context, index int) error {
	if index > len(f.categories) {
		f.calls = append(f.calls, "category")
		return scraper.ErrOutOfRange
	}
	return f.step("category")
}
func (f *fakeScraper) SetProfession(ctx context.Context, text string) error {
	return f.step("profession")
}
func (f *fakeScraper) SetLocation(ctx context.Context, text string) error {
	return f.step("location")
}
func (f *fakeScraper) ApplyFilters(ctx context.Context, spec models.FilterSpec) error {
	f.gotFilters = spec
	return f.step("filters")
}
func (f *fakeScraper) HarvestResults(ctx context.Context) ([]models.ResumeRecord, error) {
	if err := f.step("harvest"); err != nil {
		return nil, err
	}
	return f.records, nil
}

type memCache struct{ seen map[string]bool }

func (c *memCache) Mark(records []models.ResumeRecord) map[string]bool {
	fresh := make(map[string]bool, len(records))
	for _, rec := range records {
		fresh[rec.URL] = !c.seen[rec.URL]
		c.seen[rec.URL] = true
	}
	return fresh
}

type memStore struct {
	searches []models.Search
	err      error
}

func (s *memStore) SaveSearch(ctx context.Context, search models.Search, records []models.ResumeRecord) error {
	s.searches = append(s.searches, search)
	return s.err
}

func setup(t *testing.T, opts Options) (*Runner, *fakeLauncher, *fakeScraper) {
	t.Helper()
	launcher := &fakeLauncher{session: &fakeSession{page: &stubPage{}}}
	fs := &fakeScraper{
		categories: []models.Category{{Name: "IT", Index: 1}, {Name: "Продажі", Index: 2}},
		records: []models.ResumeRecord{
			{Name: "A", URL: "https://www.work.ua/resumes/1/"},
			{Name: "B", URL: "https://www.work.ua/resumes/2/"},
		},
	}
	runner := NewRunner(launcher, func(page scraper.Page) scraper.ResumeScraper {
		assert.Same(t, launcher.session.page, page)
		return fs
	}, opts)
	return runner, launcher, fs
}

func TestRunner_Run(t *testing.T) {
	dir := t.TempDir()
	cache := &memCache{seen: map[string]bool{"https://www.work.ua/resumes/1/": true}}
	store := &memStore{}
	runner, launcher, fs := setup(t, Options{ResultsDir: dir, Cache: cache, Store: store})

	req := Request{
		ChatID:     7,
		Category:   2,
		Profession: "Менеджер",
		Location:   "Львів",
		Filters:    models.FilterSpec{Gender: []string{models.GenderFemale}},
	}
	result, err := runner.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"category", "profession", "location", "filters", "harvest"}, fs.calls)
	assert.Equal(t, req.Filters, fs.gotFilters)
	assert.Equal(t, 1, launcher.session.closed)

	assert.Len(t, result.Records, 2)
	assert.False(t, result.New["https://www.work.ua/resumes/1/"])
	assert.True(t, result.New["https://www.work.ua/resumes/2/"])
	assert.True(t, cache.seen["https://www.work.ua/resumes/2/"])

	assert.NotEmpty(t, result.Search.ID)
	assert.Equal(t, int64(7), result.Search.ChatID)
	require.Len(t, store.searches, 1)
	assert.Equal(t, result.Search.ID, store.searches[0].ID)

	assert.Equal(t, filepath.Join(dir, "resumes_"+result.Search.ID+".json"), result.File)
	assert.FileExists(t, result.File)
}

func TestRunner_Run_StepFailureClosesSession(t *testing.T) {
	for _, step := range []string{"profession", "location", "filters", "harvest"} {
		t.Run(step, func(t *testing.T) {
			shots := t.TempDir()
			store := &memStore{}
			runner, launcher, fs := setup(t, Options{ScreenshotDir: shots, Store: store})
			fs.failAt = step

			result, err := runner.Run(context.Background(), Request{Category: 1})
			require.Error(t, err)
			assert.Contains(t, err.Error(), step)
			assert.Nil(t, result)
			assert.Equal(t, 1, launcher.session.closed)
			assert.Empty(t, store.searches)
			assert.Len(t, launcher.session.page.shots, 1, "failure screenshot captured")
		})
	}
}

func TestRunner_Run_OutOfRange(t *testing.T) {
	runner, launcher, fs := setup(t, Options{})

	_, err := runner.Run(context.Background(), Request{Category: 30})
	assert.ErrorIs(t, err, scraper.ErrOutOfRange)
	assert.Equal(t, []string{"category"}, fs.calls, "nothing runs after a bad category")
	assert.Equal(t, 1, launcher.session.closed)
	assert.Empty(t, launcher.session.page.shots, "no screenshot dir configured")
}

func TestRunner_Run_LaunchFailure(t *testing.T) {
	runner, launcher, fs := setup(t, Options{})
	launcher.err = errors.New("chromium missing")

	_, err := runner.Run(context.Background(), Request{Category: 1})
	assert.ErrorContains(t, err, "launch browser")
	assert.Empty(t, fs.calls)
}

func TestRunner_Run_PostProcessingFailuresIgnored(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	store := &memStore{err: errors.New("db down")}
	runner, _, _ := setup(t, Options{ResultsDir: blocker, Store: store})

	result, err := runner.Run(context.Background(), Request{Category: 1})
	require.NoError(t, err)
	assert.Empty(t, result.File)
	assert.Len(t, result.Records, 2)
	assert.True(t, result.New["https://www.work.ua/resumes/1/"], "everything is new without a cache")
}

func TestRunner_Categories(t *testing.T) {
	runner, launcher, fs := setup(t, Options{})

	categories, err := runner.Categories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, 2)
	assert.Equal(t, []string{"categories"}, fs.calls)
	assert.Equal(t, 1, launcher.session.closed)
}
