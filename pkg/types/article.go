// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Category is the topical bucket an article is assigned to.
type Category string

const (
	CategoryGeoMajor   Category = "geo_major"
	CategoryGeoOther   Category = "geo_other"
	CategoryMonetary   Category = "monetary"
	CategoryFiscal     Category = "fiscal"
	CategoryTechnology Category = "technology"
	CategoryOther      Category = "other"
)

// Categories lists every category in resolution priority order. When an
// article matches several keyword sets, the earliest category wins.
var Categories = []Category{
	CategoryGeoMajor,
	CategoryGeoOther,
	CategoryMonetary,
	CategoryFiscal,
	CategoryTechnology,
	CategoryOther,
}

// ParseCategory validates a category label as returned by a model or read
// from a document. Surrounding whitespace and case are ignored.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// Article is one candidate item flowing through a curation run. It is
// created by the feed collaborator, scored by a backend and annotated by
// the selector.
type Article struct {
	// ID is ArticleID(Link); the join key across runs and feedback.
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Source  string `json:"source" yaml:"source"`
	Summary string `json:"summary" yaml:"summary"`
	Link    string `json:"link" yaml:"link"`

	// PublishedAt is zero when the feed carried no usable date.
	PublishedAt time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`

	Category Category `json:"category" yaml:"category"`

	// RawScore is the backend score on the 0-10 scale, before selection
	// penalties and boosts.
	RawScore float64 `json:"raw_score" yaml:"raw_score"`

	// FinalScore is the selection score at the moment the article was picked.
	FinalScore float64 `json:"final_score" yaml:"final_score"`

	// Result records which backend produced RawScore and Category.
	Result ScoringResult `json:"-" yaml:"-"`

	InterestBoosted   bool `json:"interest_boosted,omitempty" yaml:"interest_boosted,omitempty"`
	PrioritiesBoosted bool `json:"priorities_boosted,omitempty" yaml:"priorities_boosted,omitempty"`
	SerendipityPick   bool `json:"serendipity_pick,omitempty" yaml:"serendipity_pick,omitempty"`

	InterestModifier  float64  `json:"interest_modifier,omitempty" yaml:"interest_modifier,omitempty"`
	PriorityBoost     float64  `json:"priority_boost,omitempty" yaml:"priority_boost,omitempty"`
	MatchedPriorities []string `json:"matched_priorities,omitempty" yaml:"matched_priorities,omitempty"`
}

// Apply attaches a scoring result to the article.
func (a *Article) Apply(r ScoringResult) {
	core := r.Core()
	a.Result = r
	a.RawScore = core.Score
	a.Category = core.Category
}

// Method reports the scoring method that produced the article's score, or
// an empty string when it has not been scored.
func (a *Article) Method() Method {
	if a.Result == nil {
		return ""
	}
	return a.Result.Core().Method
}

// Text returns the title and summary joined, lower-cased, as used for
// keyword matching.
func (a *Article) Text() string {
	return strings.ToLower(a.Title + " " + a.Summary)
}

// CanonicalURL normalizes a link so that trivially different spellings of
// the same URL map to the same article. Unparseable input is returned
// trimmed.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
		u.RawPath = ""
	}
	return u.String()
}

// ArticleID derives the stable article identifier from a link: the first
// 12 hex characters of SHA-256 over the canonical URL.
func ArticleID(link string) string {
	h := sha256.Sum256([]byte(CanonicalURL(link)))
	return fmt.Sprintf("%x", h[:])[:12]
}
