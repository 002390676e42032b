// Package scoring assigns a 0-10 score and a category to candidate
// articles. Three backends share the Scorer interface: Mechanical
// (keywords, recency, source weight), SingleStage (one batch model call)
// and TwoStage (model prefilter then model rerank). Run applies the
// strict-or-fallback policy around any of them.
package scoring

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/curator/pkg/types"
)

const (
	// recencyMax is the recency score of a just-published article; it
	// decays by recencyPerDay and reaches zero after ten days.
	recencyMax    = 100.0
	recencyPerDay = 10.0

	keywordPoints = 5.0

	// normalizeMax maps the raw mechanical score onto 0-10.
	normalizeMax = 200.0
)

// Scorer scores a pool of articles. Implementations that filter (TwoStage)
// return only the surviving candidates; the others return one article per
// input, in input order.
type Scorer interface {
	Method() types.Method
	Score(ctx context.Context, pool []types.Article, profile string) ([]types.Article, error)
}

// Mechanical is the deterministic fallback scorer. It ignores the
// personalization profile.
type Mechanical struct {
	Keywords      []string
	CategoryTerms map[types.Category][]string
	SourceWeights map[string]float64

	// Now is the clock used for recency; nil means time.Now.
	Now func() time.Time
}

// NewMechanical builds a Mechanical scorer from scoring and feed settings.
func NewMechanical(cfg types.ScoringConfig, weights map[string]float64) *Mechanical {
	return &Mechanical{
		Keywords:      cfg.Keywords,
		CategoryTerms: cfg.CategoryTerms,
		SourceWeights: weights,
	}
}

// Method implements Scorer.
func (m *Mechanical) Method() types.Method { return types.MethodMechanical }

// Score implements Scorer. It never fails.
func (m *Mechanical) Score(_ context.Context, pool []types.Article, _ string) ([]types.Article, error) {
	now := m.now()
	out := make([]types.Article, len(pool))
	for i, a := range pool {
		a.Apply(m.scoreAt(a, now))
		out[i] = a
	}
	return out, nil
}

// ScoreArticle scores one article.
func (m *Mechanical) ScoreArticle(a types.Article) types.MechanicalResult {
	return m.scoreAt(a, m.now())
}

func (m *Mechanical) scoreAt(a types.Article, now time.Time) types.MechanicalResult {
	text := a.Text()

	recency := 0.0
	if !a.PublishedAt.IsZero() {
		ageHours := now.Sub(a.PublishedAt).Hours()
		if ageHours < 0 {
			ageHours = 0
		}
		recency = math.Max(0, recencyMax-(ageHours/24)*recencyPerDay)
	}

	hits := 0
	for _, kw := range m.Keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			hits++
		}
	}

	weight := 1.0
	if w, ok := m.SourceWeights[a.Source]; ok && w > 0 {
		weight = w
	}

	raw := (recency + float64(hits)*keywordPoints) * weight

	return types.MechanicalResult{
		ScoreCore: types.ScoreCore{
			Score:    Normalize(raw),
			Category: m.Categorize(text),
			RawScore: raw,
			Method:   types.MethodMechanical,
		},
		KeywordHits:  hits,
		RecencyScore: recency,
		SourceWeight: weight,
	}
}

// Categorize returns the first category, in priority order, with a term
// occurring in text. Text is expected lower-cased.
func (m *Mechanical) Categorize(text string) types.Category {
	for _, cat := range types.Categories {
		for _, term := range m.CategoryTerms[cat] {
			if term != "" && strings.Contains(text, strings.ToLower(term)) {
				return cat
			}
		}
	}
	return types.CategoryOther
}

// Normalize maps a raw mechanical score onto [0, 10].
func Normalize(raw float64) float64 {
	return Clamp(raw / normalizeMax * 10)
}

// Clamp bounds a score to [0, 10].
func Clamp(score float64) float64 {
	return math.Min(10, math.Max(0, score))
}

func (m *Mechanical) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// fallbackResult scores one article mechanically and records why.
func (m *Mechanical) fallbackResult(a types.Article, now time.Time, reason string) types.MechanicalResult {
	r := m.scoreAt(a, now)
	r.FallbackReason = reason
	return r
}
