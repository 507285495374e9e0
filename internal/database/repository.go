package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"workua-resume-bot/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Transaction-mode poolers (PgBouncer) do not support prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS searches (
	id          UUID PRIMARY KEY,
	chat_id     BIGINT,
	category    INT NOT NULL,
	profession  TEXT NOT NULL,
	location    TEXT NOT NULL,
	filters     JSONB NOT NULL DEFAULT '{}',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS resumes (
	url             TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	specialization  TEXT NOT NULL,
	salary          TEXT NOT NULL,
	update_date     TEXT NOT NULL,
	first_seen_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_seen_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS search_results (
	search_id   UUID NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
	resume_url  TEXT NOT NULL REFERENCES resumes(url),
	position    INT NOT NULL,
	PRIMARY KEY (search_id, resume_url)
);`

// EnsureSchema creates the tables when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// ---------------- SEARCH OPERATIONS ----------------

// SaveSearch stores a search with its harvested resumes in one
// transaction. Known resumes are refreshed (based on url).
func (r *Repository) SaveSearch(ctx context.Context, search models.Search, records []models.ResumeRecord) (err error) {
	filters, err := json.Marshal(search.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}
	createdAt := search.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO searches (id, chat_id, category, profession, location, filters, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		search.ID, nullableChat(search.ChatID), search.Category, search.Profession, search.Location, string(filters), createdAt)
	if err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}

	batch := &pgx.Batch{}
	for i, rec := range records {
		batch.Queue(`
			INSERT INTO resumes (url, name, specialization, salary, update_date)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (url)
			DO UPDATE SET name = EXCLUDED.name, specialization = EXCLUDED.specialization,
				salary = EXCLUDED.salary, update_date = EXCLUDED.update_date, last_seen_at = now()`,
			rec.URL, rec.Name, rec.Specialization, rec.Salary, rec.UpdateDate)
		batch.Queue(`
			INSERT INTO search_results (search_id, resume_url, position)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			search.ID, rec.URL, i+1)
	}
	if batch.Len() > 0 {
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save resumes: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit search: %w", err)
	}
	return nil
}

// GetSearchResults returns the resumes of a stored search in harvest order.
func (r *Repository) GetSearchResults(ctx context.Context, searchID string) ([]models.ResumeRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.update_date, r.name, r.specialization, r.salary, r.url
		FROM search_results sr JOIN resumes r ON r.url = sr.resume_url
		WHERE sr.search_id = $1
		ORDER BY sr.position`, searchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query search results: %w", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.ResumeRecord])
	if err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}
	return records, nil
}

// GetSearch loads a stored search by id.
func (r *Repository) GetSearch(ctx context.Context, searchID string) (*models.Search, error) {
	var (
		s       models.Search
		chatID  *int64
		filters []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id::text, chat_id, category, profession, location, filters, created_at
		FROM searches WHERE id = $1`, searchID).
		Scan(&s.ID, &chatID, &s.Category, &s.Profession, &s.Location, &filters, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("search not found")
		}
		return nil, fmt.Errorf("failed to get search: %w", err)
	}
	if chatID != nil {
		s.ChatID = *chatID
	}
	if err := json.Unmarshal(filters, &s.Filters); err != nil {
		return nil, fmt.Errorf("failed to decode filters: %w", err)
	}
	return &s, nil
}

func nullableChat(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
