// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pdiddy/curator/pkg/types"
)

const reasonNotScored = "not scored by model"

// SingleStage scores the whole pool with one model call. Articles the
// model leaves out, or whose line does not parse, are scored by Fallback.
type SingleStage struct {
	Provider  Provider
	Model     string
	MaxTokens int
	Domain    string
	Fallback  *Mechanical
	Log       zerolog.Logger
}

// Method implements Scorer.
func (s *SingleStage) Method() types.Method { return types.MethodSingleStage }

// Score implements Scorer. A provider error is returned unchanged for Run
// to classify.
func (s *SingleStage) Score(ctx context.Context, pool []types.Article, profile string) ([]types.Article, error) {
	if len(pool) == 0 {
		return nil, nil
	}

	prompt, err := render(singleTmpl, promptData{
		Profile:    profile,
		Domain:     s.Domain,
		Categories: categoryList(),
		Lines:      articleLines(pool, singleSummaryChars, false),
	})
	if err != nil {
		return nil, err
	}

	text, err := s.Provider.Complete(ctx, Request{Model: s.Model, Prompt: prompt, MaxTokens: s.MaxTokens})
	if err != nil {
		return nil, fmt.Errorf("single-stage scoring: %w", err)
	}

	rows, bad := ParseRows(text, len(pool))
	for _, e := range bad {
		s.Log.Warn().Err(e).Msg("unparsed scoring line")
	}

	now := s.Fallback.now()
	out := make([]types.Article, len(pool))
	fellBack := 0
	for i, a := range pool {
		row, ok := rows[i]
		if !ok {
			a.Apply(s.Fallback.fallbackResult(a, now, reasonNotScored))
			fellBack++
		} else {
			a.Apply(types.SingleStageResult{
				ScoreCore: types.ScoreCore{
					Score:    row.Score,
					Category: row.Category,
					RawScore: row.Score,
					Method:   types.MethodSingleStage,
				},
				Provider: s.Provider.Name(),
				Model:    s.Model,
			})
		}
		out[i] = a
	}

	s.Log.Info().
		Int("articles", len(pool)).
		Int("model_scored", len(pool)-fellBack).
		Int("fallback", fellBack).
		Str("model", s.Model).
		Msg("single-stage scoring complete")
	return out, nil
}
