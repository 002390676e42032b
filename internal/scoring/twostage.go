// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pdiddy/curator/pkg/types"
)

// DefaultTopK is the number of candidates kept by the prefilter.
const DefaultTopK = 50

// TwoStage triages the full pool with a cheap model, keeps the TopK best
// and re-scores only those with a stronger model.
//
// Stage 1 articles the model does not score get their mechanical score as
// the prefilter value. Stage 2 misses keep their stage 1 score and are
// marked Reranked false; the two stages are not on a common calibration.
type TwoStage struct {
	Prefilter      Provider
	PrefilterModel string
	PrefilterMax   int

	Ranking      Provider
	RankingModel string
	RankingMax   int

	TopK     int
	Domain   string
	Fallback *Mechanical
	Log      zerolog.Logger
}

// Method implements Scorer.
func (t *TwoStage) Method() types.Method { return types.MethodTwoStage }

type candidate struct {
	article   types.Article
	prefilter float64
	category  types.Category
	fallback  *types.MechanicalResult
}

// Score implements Scorer. It returns at most TopK articles, ordered by
// prefilter score.
func (t *TwoStage) Score(ctx context.Context, pool []types.Article, profile string) ([]types.Article, error) {
	if len(pool) == 0 {
		return nil, nil
	}

	cands, err := t.prefilter(ctx, pool, profile)
	if err != nil {
		return nil, err
	}

	prompt, err := render(rerankTmpl, promptData{
		Profile: profile,
		Domain:  t.Domain,
		Lines:   articleLines(articlesOf(cands), rerankSummaryChars, true),
	})
	if err != nil {
		return nil, err
	}
	text, err := t.Ranking.Complete(ctx, Request{Model: t.RankingModel, Prompt: prompt, MaxTokens: t.RankingMax})
	if err != nil {
		return nil, fmt.Errorf("two-stage rerank: %w", err)
	}

	scores, bad := ParseScores(text, len(cands))
	for _, e := range bad {
		t.Log.Warn().Err(e).Msg("unparsed rerank line")
	}

	out := make([]types.Article, len(cands))
	reranked := 0
	for i, c := range cands {
		a := c.article
		score, ok := scores[i]
		switch {
		case ok:
			reranked++
			a.Apply(t.result(score, c, true))
		case c.fallback != nil:
			a.Apply(*c.fallback)
		default:
			a.Apply(t.result(c.prefilter, c, false))
		}
		out[i] = a
	}

	t.Log.Info().
		Int("pool", len(pool)).
		Int("candidates", len(cands)).
		Int("reranked", reranked).
		Str("prefilter_model", t.PrefilterModel).
		Str("ranking_model", t.RankingModel).
		Msg("two-stage scoring complete")
	return out, nil
}

func (t *TwoStage) prefilter(ctx context.Context, pool []types.Article, profile string) ([]candidate, error) {
	prompt, err := render(prefilterTmpl, promptData{
		Profile:    profile,
		Domain:     t.Domain,
		Categories: categoryList(),
		Lines:      articleLines(pool, singleSummaryChars, false),
	})
	if err != nil {
		return nil, err
	}
	text, err := t.Prefilter.Complete(ctx, Request{Model: t.PrefilterModel, Prompt: prompt, MaxTokens: t.PrefilterMax})
	if err != nil {
		return nil, fmt.Errorf("two-stage prefilter: %w", err)
	}

	rows, bad := ParseRows(text, len(pool))
	for _, e := range bad {
		t.Log.Warn().Err(e).Msg("unparsed prefilter line")
	}

	now := t.Fallback.now()
	cands := make([]candidate, len(pool))
	for i, a := range pool {
		if row, ok := rows[i]; ok {
			cands[i] = candidate{article: a, prefilter: row.Score, category: row.Category}
			continue
		}
		mr := t.Fallback.fallbackResult(a, now, reasonNotScored)
		cands[i] = candidate{article: a, prefilter: mr.Score, category: mr.Category, fallback: &mr}
	}

	sort.SliceStable(cands, func(i, j int) bool { return cands[i].prefilter > cands[j].prefilter })

	k := t.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	if len(cands) > k {
		cands = cands[:k]
	}
	return cands, nil
}

func (t *TwoStage) result(score float64, c candidate, reranked bool) types.TwoStageResult {
	return types.TwoStageResult{
		ScoreCore: types.ScoreCore{
			Score:    score,
			Category: c.category,
			RawScore: score,
			Method:   types.MethodTwoStage,
		},
		PrefilterScore: c.prefilter,
		Reranked:       reranked,
		Model:          t.RankingModel,
	}
}

func articlesOf(cands []candidate) []types.Article {
	out := make([]types.Article, len(cands))
	for i, c := range cands {
		out[i] = c.article
		out[i].Category = c.category
	}
	return out
}
