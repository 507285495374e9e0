package database

import (
	"context"
	"os"
	"testing"
	"time"

	"workua-resume-bot/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := ConnectDB(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func TestSaveSearch_RoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	suffix := uuid.NewString()

	search := models.Search{
		ID:         uuid.NewString(),
		ChatID:     42,
		Category:   3,
		Profession: "Водій",
		Location:   "Київ",
		Filters:    models.FilterSpec{Gender: []string{models.GenderMale}},
	}
	records := []models.ResumeRecord{
		{UpdateDate: "2026-10-01", Name: "B", Specialization: "Driver", Salary: "25 000 грн", URL: "https://www.work.ua/resumes/b-" + suffix},
		{UpdateDate: "2026-10-02", Name: "A", Specialization: "Driver", Salary: "30 000 грн", URL: "https://www.work.ua/resumes/a-" + suffix},
	}
	require.NoError(t, repo.SaveSearch(ctx, search, records))

	got, err := repo.GetSearchResults(ctx, search.ID)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	stored, err := repo.GetSearch(ctx, search.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stored.ChatID)
	assert.Equal(t, []string{models.GenderMale}, stored.Filters.Gender)
}

func TestSaveSearch_DuplicateIDRollsBack(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	search := models.Search{ID: uuid.NewString(), Category: 1, Profession: "p", Location: "l"}
	require.NoError(t, repo.SaveSearch(ctx, search, nil))

	url := "https://www.work.ua/resumes/rollback-" + uuid.NewString()
	err := repo.SaveSearch(ctx, search, []models.ResumeRecord{{URL: url, Name: "x"}})
	require.Error(t, err)

	got, err := repo.GetSearchResults(ctx, search.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
