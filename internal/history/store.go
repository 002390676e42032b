// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists which articles were selected on which day and
// caches enough of each article to act on it later by reference.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/curator/pkg/types"
)

const dateLayout = "2006-01-02"

// ErrNotFound is returned when a reference matches no recorded article.
var ErrNotFound = errors.New("article not found in history")

// Appearance is one day an article was part of the briefing.
type Appearance struct {
	Date  string  `yaml:"date" json:"date"`
	Rank  int     `yaml:"rank" json:"rank"`
	// Score is the article's 0-10 backend score that day, not the
	// penalized selection score.
	Score float64 `yaml:"score" json:"score"`
}

// Entry is the cached article plus every appearance, oldest first.
type Entry struct {
	ID         string         `yaml:"id" json:"id"`
	Title      string         `yaml:"title" json:"title"`
	Source     string         `yaml:"source" json:"source"`
	URL        string         `yaml:"url" json:"url"`
	Summary    string         `yaml:"summary,omitempty" json:"summary,omitempty"`
	Published  string         `yaml:"published,omitempty" json:"published,omitempty"`
	Category   types.Category `yaml:"category" json:"category"`
	Score      float64        `yaml:"score" json:"score"`
	FirstSeen  string         `yaml:"first_seen" json:"first_seen"`
	CachedDate string         `yaml:"cached_date" json:"cached_date"`

	Appearances []Appearance `yaml:"appearances" json:"appearances"`
}

// Article rebuilds the fields feedback and display need.
func (e Entry) Article() types.Article {
	a := types.Article{
		ID:       e.ID,
		Title:    e.Title,
		Source:   e.Source,
		Link:     e.URL,
		Summary:  e.Summary,
		Category: e.Category,
		RawScore: e.Score,
	}
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		a.PublishedAt = t
	}
	return a
}

// Store manages the history SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens or creates the database at path and its schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			source TEXT,
			url TEXT,
			summary TEXT,
			published TEXT,
			category TEXT,
			score REAL,
			first_seen TEXT NOT NULL,
			cached_date TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS appearances (
			article_id TEXT NOT NULL REFERENCES articles(id),
			date TEXT NOT NULL,
			rank INTEGER NOT NULL,
			score REAL,
			recorded_at TEXT NOT NULL,
			UNIQUE(article_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_appearances_date ON appearances(date, rank)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record caches each article and writes its appearance for date. The
// article's position in the slice is its rank, starting at 1. Recording
// the same day again updates rank and score in place.
func (s *Store) Record(ctx context.Context, articles []types.Article, date string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	recorded := s.now().UTC().Format(time.RFC3339Nano)
	for i, a := range articles {
		if a.ID == "" {
			continue
		}
		var published string
		if !a.PublishedAt.IsZero() {
			published = a.PublishedAt.UTC().Format(time.RFC3339)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO articles (id, title, source, url, summary, published, category, score, first_seen, cached_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				title=excluded.title, source=excluded.source, url=excluded.url,
				summary=excluded.summary, published=excluded.published,
				category=excluded.category, score=excluded.score,
				cached_date=excluded.cached_date`,
			a.ID, a.Title, a.Source, a.Link, a.Summary, published, string(a.Category), a.RawScore, date, date,
		)
		if err != nil {
			return fmt.Errorf("caching article %s: %w", a.ID, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO appearances (article_id, date, rank, score, recorded_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(article_id, date) DO UPDATE SET
				rank=excluded.rank, score=excluded.score, recorded_at=excluded.recorded_at`,
			a.ID, date, i+1, a.RawScore, recorded,
		)
		if err != nil {
			return fmt.Errorf("recording appearance of %s: %w", a.ID, err)
		}
	}
	return tx.Commit()
}

// Get returns the cached article and its appearances.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	var e Entry
	var source, url, summary, published, category sql.NullString
	var score sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, source, url, summary, published, category, score, first_seen, cached_date
		 FROM articles WHERE id = ?`, id,
	).Scan(&e.ID, &e.Title, &source, &url, &summary, &published, &category, &score, &e.FirstSeen, &e.CachedDate)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("querying article %s: %w", id, err)
	}
	e.Source, e.URL, e.Summary, e.Published = source.String, url.String, summary.String, published.String
	e.Category = types.Category(category.String)
	e.Score = score.Float64

	e.Appearances, err = s.Appearances(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Appearances returns the days id was selected, oldest first.
func (s *Store) Appearances(ctx context.Context, id string) ([]Appearance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, rank, score FROM appearances WHERE article_id = ? ORDER BY date`, id)
	if err != nil {
		return nil, fmt.Errorf("querying appearances: %w", err)
	}
	defer rows.Close()

	out := []Appearance{}
	for rows.Next() {
		var ap Appearance
		var score sql.NullFloat64
		if err := rows.Scan(&ap.Date, &ap.Rank, &score); err != nil {
			return nil, fmt.Errorf("scanning appearance: %w", err)
		}
		ap.Score = score.Float64
		out = append(out, ap)
	}
	return out, rows.Err()
}

// Day returns the articles recorded for date in rank order.
func (s *Store) Day(ctx context.Context, date string) ([]Entry, error) {
	ids, err := s.queryIDs(ctx,
		`SELECT article_id FROM appearances WHERE date = ? ORDER BY rank, recorded_at DESC`, date)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// All returns every cached article ordered by first appearance.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	ids, err := s.queryIDs(ctx, `SELECT id FROM articles ORDER BY first_seen, id`)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning article id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
