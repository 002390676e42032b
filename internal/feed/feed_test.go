// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/curator/pkg/types"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test</title>
<item>
  <title>Gold hits record</title>
  <link>https://example.com/gold?utm_source=rss</link>
  <description>&lt;p&gt;Bullion &lt;b&gt;rallied&lt;/b&gt;   again.&lt;/p&gt;</description>
  <pubDate>Mon, 02 Mar 2026 08:00:00 GMT</pubDate>
</item>
<item>
  <title>No link item</title>
  <description>dropped</description>
</item>
<item>
  <title>Budget talks</title>
  <link>https://example.com/budget</link>
  <description>Plain text summary</description>
</item>
</channel></rss>`

func TestRSSFetcherFetch(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssBody)
	}))
	defer ts.Close()

	cfg := types.DefaultConfig().Feeds
	f := NewRSSFetcher(cfg)

	articles, err := f.Fetch(context.Background(), types.FeedSource{Name: "Test", URL: ts.URL})
	require.NoError(t, err)
	require.Len(t, articles, 2)

	gold := articles[0]
	assert.Equal(t, "Gold hits record", gold.Title)
	assert.Equal(t, "Bullion rallied again.", gold.Summary)
	assert.Equal(t, "Test", gold.Source)
	assert.Equal(t, types.ArticleID("https://example.com/gold"), gold.ID, "tracking params do not change identity")
	assert.Equal(t, time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC), gold.PublishedAt)

	assert.True(t, articles[1].PublishedAt.IsZero())
	assert.Equal(t, cfg.UserAgent, gotUA)
}

func TestRSSFetcherMaxItems(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssBody)
	}))
	defer ts.Close()

	cfg := types.DefaultConfig().Feeds
	cfg.MaxItems = 1
	articles, err := NewRSSFetcher(cfg).Fetch(context.Background(), types.FeedSource{Name: "Test", URL: ts.URL})
	require.NoError(t, err)
	assert.Len(t, articles, 1)
}

type stubFetcher map[string][]types.Article

func (s stubFetcher) Fetch(_ context.Context, src types.FeedSource) ([]types.Article, error) {
	arts, ok := s[src.Name]
	if !ok {
		return nil, errors.New("boom")
	}
	return arts, nil
}

func TestFetchAll(t *testing.T) {
	shared := types.Article{ID: "dup", Title: "shared"}
	f := stubFetcher{
		"A": {{ID: "a1"}, shared},
		"B": {shared, {ID: "b1"}},
	}
	sources := []types.FeedSource{{Name: "A"}, {Name: "broken"}, {Name: "B"}}

	got, sum, err := FetchAll(context.Background(), f, sources, nil, zerolog.Nop())
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, a := range got {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{"a1", "dup", "b1"}, ids)
	assert.Equal(t, FetchSummary{
		Sources: 3, Failed: 1, Articles: 3, Duplicates: 1,
		Failures: []Failure{{Source: "broken", Reason: "boom"}},
	}, sum)
	assert.True(t, sum.HasFailures())
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"<div>  Multiple   spaces  </div>", "Multiple spaces"},
		{"", ""},
		{"Fish &amp; chips", "Fish & chips"},
		{"<p>text</p><script>alert(1)</script>", "text"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripHTML(tt.input), tt.input)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "this is...", truncate("this is a long string", 10))
	assert.Equal(t, "こん...", truncate("こんにちは世界です", 5))
}
