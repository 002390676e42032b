// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed collects candidate articles from RSS and Atom sources.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/pdiddy/curator/internal/httputil"
	"github.com/pdiddy/curator/pkg/types"
)

// maxSummary bounds the stored summary; prompts truncate further.
const maxSummary = 1000

// Fetcher retrieves the current items of one source.
type Fetcher interface {
	Fetch(ctx context.Context, source types.FeedSource) ([]types.Article, error)
}

// RSSFetcher parses RSS, Atom and JSON feeds with gofeed.
type RSSFetcher struct {
	parser   *gofeed.Parser
	maxItems int
	now      func() time.Time
}

// NewRSSFetcher builds a fetcher from the feed settings.
func NewRSSFetcher(cfg types.FeedConfig) *RSSFetcher {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: cfg.Timeout}
	if cfg.UserAgent != "" {
		p.UserAgent = cfg.UserAgent
	}
	return &RSSFetcher{parser: p, maxItems: cfg.MaxItems, now: time.Now}
}

// Fetch implements Fetcher. Items without a link are dropped since the link
// is the article's identity.
func (f *RSSFetcher) Fetch(ctx context.Context, source types.FeedSource) ([]types.Article, error) {
	parsed, err := f.parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}

	items := parsed.Items
	if f.maxItems > 0 && len(items) > f.maxItems {
		items = items[:f.maxItems]
	}

	articles := make([]types.Article, 0, len(items))
	for _, item := range items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}

		var pub time.Time
		switch {
		case item.PublishedParsed != nil:
			pub = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			pub = *item.UpdatedParsed
		}

		desc := item.Description
		if desc == "" {
			desc = item.Content
		}

		articles = append(articles, types.Article{
			ID:          types.ArticleID(link),
			Title:       strings.TrimSpace(StripHTML(item.Title)),
			Source:      source.Name,
			Summary:     truncate(StripHTML(desc), maxSummary),
			Link:        link,
			PublishedAt: pub.UTC(),
		})
	}
	return articles, nil
}

// FetchSummary reports per-run feed counts.
type FetchSummary struct {
	Sources    int
	Failed     int
	Articles   int
	Duplicates int
	Failures   []Failure
}

// Failure names a source that could not be fetched.
type Failure struct {
	Source string
	Reason string
}

// HasFailures reports whether any source failed.
func (s FetchSummary) HasFailures() bool { return s.Failed > 0 }

// FetchAll fetches sources one after another, pacing requests with pacer.
// A failing source is logged and skipped. Articles whose ID was already
// seen in this run are dropped, keeping the first.
func FetchAll(ctx context.Context, f Fetcher, sources []types.FeedSource, pacer *httputil.Pacer, log zerolog.Logger) ([]types.Article, FetchSummary, error) {
	var (
		all  []types.Article
		sum  = FetchSummary{Sources: len(sources)}
		seen = make(map[string]bool)
	)

	for _, src := range sources {
		if err := pacer.Wait(ctx); err != nil {
			return all, sum, err
		}

		articles, err := f.Fetch(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return all, sum, ctx.Err()
			}
			sum.Failed++
			sum.Failures = append(sum.Failures, Failure{Source: src.Name, Reason: err.Error()})
			log.Warn().Err(err).Str("source", src.Name).Msg("feed fetch failed")
			continue
		}

		added := 0
		for _, a := range articles {
			if seen[a.ID] {
				sum.Duplicates++
				continue
			}
			seen[a.ID] = true
			all = append(all, a)
			added++
		}
		log.Debug().Str("source", src.Name).Int("articles", added).Msg("feed fetched")
	}

	sum.Articles = len(all)
	return all, sum, nil
}

// StripHTML returns the visible text of an HTML fragment with whitespace
// collapsed. Plain text passes through unchanged apart from whitespace.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
