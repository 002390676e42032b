package history

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/curator/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	store.now = func() time.Time { return time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { store.Close() })
	return store
}

func article(id, title string, score float64) types.Article {
	return types.Article{
		ID:          id,
		Title:       title,
		Source:      "Reuters",
		Link:        "https://example.com/" + id,
		Category:    types.CategoryMonetary,
		RawScore:    score,
		FinalScore:  score,
		PublishedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// --- tests ---

func TestRecordAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	err := s.Record(ctx, []types.Article{article("aaa", "First", 8), article("bbb", "Second", 6)}, "2026-03-01")
	if err != nil {
		t.Fatal(err)
	}

	e, err := s.Get(ctx, "bbb")
	if err != nil {
		t.Fatal(err)
	}
	if e.Title != "Second" || e.Source != "Reuters" || e.Category != types.CategoryMonetary {
		t.Errorf("cached article = %+v", e)
	}
	if e.FirstSeen != "2026-03-01" {
		t.Errorf("first_seen = %q", e.FirstSeen)
	}
	if len(e.Appearances) != 1 || e.Appearances[0].Rank != 2 || e.Appearances[0].Score != 6 {
		t.Errorf("appearances = %+v", e.Appearances)
	}

	a := e.Article()
	if a.Link != "https://example.com/bbb" || a.PublishedAt.IsZero() {
		t.Errorf("Article() = %+v", a)
	}
}

func TestRecordStoresBackendScore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	a := article("ccc", "Penalized", 6.5)
	a.FinalScore = -47.5
	if err := s.Record(ctx, []types.Article{a}, "2026-03-01"); err != nil {
		t.Fatal(err)
	}

	aps, err := s.Appearances(ctx, "ccc")
	if err != nil {
		t.Fatal(err)
	}
	if len(aps) != 1 || aps[0].Score != 6.5 {
		t.Errorf("appearances = %+v, want score 6.5", aps)
	}
}

func TestRecordSameDayIsIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, []types.Article{article("aaa", "First", 8)}, "2026-03-01"); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, []types.Article{article("bbb", "New", 9), article("aaa", "First", 7)}, "2026-03-01"); err != nil {
		t.Fatal(err)
	}

	aps, err := s.Appearances(ctx, "aaa")
	if err != nil {
		t.Fatal(err)
	}
	if len(aps) != 1 {
		t.Fatalf("got %d appearances, want 1", len(aps))
	}
	if aps[0].Rank != 2 || aps[0].Score != 7 {
		t.Errorf("appearance not updated: %+v", aps[0])
	}
}

func TestRecordKeepsFirstSeen(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, date := range []string{"2026-02-27", "2026-03-01"} {
		if err := s.Record(ctx, []types.Article{article("aaa", "First", 8)}, date); err != nil {
			t.Fatal(err)
		}
	}
	e, err := s.Get(ctx, "aaa")
	if err != nil {
		t.Fatal(err)
	}
	if e.FirstSeen != "2026-02-27" || e.CachedDate != "2026-03-01" {
		t.Errorf("first_seen=%q cached_date=%q", e.FirstSeen, e.CachedDate)
	}
	if len(e.Appearances) != 2 || e.Appearances[0].Date != "2026-02-27" {
		t.Errorf("appearances = %+v", e.Appearances)
	}
}

func TestResolve(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	if err := s.Record(ctx, []types.Article{article("aaa", "A", 8), article("bbb", "B", 6)}, "2026-03-01"); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, []types.Article{article("ccc", "C", 9)}, "2026-03-02"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		ref    string
		wantID string
	}{
		{"aaa", "aaa"},
		{"2026-03-01-2", "bbb"},
		{"yesterday-1", "aaa"},
		{"today-1", "ccc"},
		{" Yesterday-2 ", "bbb"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			e, err := s.Resolve(ctx, tt.ref, now)
			if err != nil {
				t.Fatal(err)
			}
			if e.ID != tt.wantID {
				t.Errorf("Resolve(%q) = %s, want %s", tt.ref, e.ID, tt.wantID)
			}
		})
	}

	for _, ref := range []string{"zzz", "2026-03-01-9", "yesterday-5"} {
		if _, err := s.Resolve(ctx, ref, now); !errors.Is(err, ErrNotFound) {
			t.Errorf("Resolve(%q) error = %v, want ErrNotFound", ref, err)
		}
	}
	if _, err := s.Resolve(ctx, "2026-13-45-1", now); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("invalid date should be a parse error, got %v", err)
	}
}

func TestDay(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, []types.Article{article("bbb", "B", 9), article("aaa", "A", 8)}, "2026-03-01"); err != nil {
		t.Fatal(err)
	}
	entries, err := s.Day(ctx, "2026-03-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].ID != "bbb" || entries[1].ID != "aaa" {
		t.Errorf("Day order = %+v", entries)
	}

	empty, err := s.Day(ctx, "2026-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no entries, got %d", len(empty))
	}
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, []types.Article{article("aaa", "A", 8)}, "2026-03-01"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := s.ExportYAML(ctx, &buf); err != nil {
		t.Fatal(err)
	}

	var got Export
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("export is not valid YAML: %v\n%s", err, buf.String())
	}
	if got.Exported != "2026-03-02T07:00:00Z" {
		t.Errorf("exported = %q", got.Exported)
	}
	if len(got.Articles) != 1 || got.Articles[0].ID != "aaa" || len(got.Articles[0].Appearances) != 1 {
		t.Errorf("articles = %+v", got.Articles)
	}
}

func TestExportYAMLEmpty(t *testing.T) {
	s := testStore(t)
	var buf bytes.Buffer
	if err := s.ExportYAML(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("articles: []")) {
		t.Errorf("empty export = %q", buf.String())
	}
}
