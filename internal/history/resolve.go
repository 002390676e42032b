// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

var (
	datedRef    = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(\d+)$`)
	relativeRef = regexp.MustCompile(`^(today|yesterday)-(\d+)$`)
)

// Resolve finds an article by ID, by YYYY-MM-DD-N (the Nth article of
// that day's briefing) or by today-N / yesterday-N relative to now.
func (s *Store) Resolve(ctx context.Context, ref string, now time.Time) (Entry, error) {
	ref = strings.TrimSpace(ref)

	if m := relativeRef.FindStringSubmatch(strings.ToLower(ref)); m != nil {
		day := now
		if m[1] == "yesterday" {
			day = now.AddDate(0, 0, -1)
		}
		rank, _ := strconv.Atoi(m[2])
		return s.byRank(ctx, day.Format(dateLayout), rank)
	}
	if m := datedRef.FindStringSubmatch(ref); m != nil {
		if _, err := time.Parse(dateLayout, m[1]); err != nil {
			return Entry{}, fmt.Errorf("invalid date in reference %q: %w", ref, err)
		}
		rank, _ := strconv.Atoi(m[2])
		return s.byRank(ctx, m[1], rank)
	}
	return s.Get(ctx, ref)
}

func (s *Store) byRank(ctx context.Context, date string, rank int) (Entry, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT article_id FROM appearances WHERE date = ? AND rank = ?
		 ORDER BY recorded_at DESC LIMIT 1`, date, rank,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s #%d: %w", date, rank, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("querying %s #%d: %w", date, rank, err)
	}
	return s.Get(ctx, id)
}

// Export is the YAML form of the whole history.
type Export struct {
	Exported string  `yaml:"exported"`
	Articles []Entry `yaml:"articles"`
}

// ExportYAML writes every cached article and its appearances to w.
func (s *Store) ExportYAML(ctx context.Context, w io.Writer) error {
	entries, err := s.All(ctx)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(Export{Exported: s.now().UTC().Format(time.RFC3339), Articles: entries}); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}
