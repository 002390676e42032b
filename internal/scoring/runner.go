// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pdiddy/curator/internal/errs"
	"github.com/pdiddy/curator/internal/secrets"
	"github.com/pdiddy/curator/pkg/types"
)

// Outcome is the result of one scoring run.
type Outcome struct {
	Articles []types.Article

	// Method is the backend that produced the scores actually used.
	Method types.Method

	// Degraded is set when a model backend failed and the batch was
	// rescored mechanically. Cause holds the failure.
	Degraded bool
	Cause    error
}

// Run scores pool with s. In strict mode (fallback false) any backend
// error aborts the run. With fallback enabled, recoverable errors
// (configuration and transient provider failures) rescore the entire batch
// with mech so that one run never mixes model and mechanical scales beyond
// the per-row fallback. Billing errors always abort.
func Run(ctx context.Context, s Scorer, mech *Mechanical, pool []types.Article, profile string, fallback bool, log zerolog.Logger) (Outcome, error) {
	scored, err := s.Score(ctx, pool, profile)
	if err == nil {
		return Outcome{Articles: scored, Method: s.Method()}, nil
	}

	if !fallback || s.Method() == types.MethodMechanical || !errs.Recoverable(err) {
		return Outcome{}, err
	}
	if ctx.Err() != nil {
		return Outcome{}, ctx.Err()
	}

	log.Warn().Err(err).
		Str("backend", string(s.Method())).
		Msg("scoring backend failed, falling back to mechanical for the whole batch")

	reason := fmt.Sprintf("%s failed: %v", s.Method(), err)
	now := mech.now()
	out := make([]types.Article, len(pool))
	for i, a := range pool {
		a.Apply(mech.fallbackResult(a, now, reason))
		out[i] = a
	}
	return Outcome{Articles: out, Method: types.MethodMechanical, Degraded: true, Cause: err}, nil
}

// New builds the Scorer for cfg.Mode along with the Mechanical scorer used
// for fallback. domain is the knowledge domain named in prompts and should
// match the profile's active domain; empty means types.ActiveDomain.
// Missing credentials are not an error here; the provider reports them on
// first use so the fallback policy applies.
func New(cfg types.ScoringConfig, domain string, keys secrets.Store, weights map[string]float64, log zerolog.Logger) (Scorer, *Mechanical, error) {
	mech := NewMechanical(cfg, weights)
	client := &http.Client{Timeout: cfg.Timeout}
	if domain == "" {
		domain = types.ActiveDomain
	}

	anthropicKey, _ := keys.Lookup(secrets.AnthropicKey)
	anthropic := &AnthropicProvider{APIKey: anthropicKey, Client: client}

	switch cfg.Mode {
	case types.ModeMechanical, "":
		return mech, mech, nil
	case types.ModeAI:
		return &SingleStage{
			Provider:  anthropic,
			Model:     cfg.Single.Model,
			MaxTokens: cfg.Single.MaxTokens,
			Domain:    domain,
			Fallback:  mech,
			Log:       log,
		}, mech, nil
	case types.ModeTwoStage:
		return &TwoStage{
			Prefilter:      anthropic,
			PrefilterModel: cfg.Prefilter.Model,
			PrefilterMax:   cfg.Prefilter.MaxTokens,
			Ranking:        anthropic,
			RankingModel:   cfg.Ranking.Model,
			RankingMax:     cfg.Ranking.MaxTokens,
			TopK:           cfg.PrefilterTopK,
			Domain:         domain,
			Fallback:       mech,
			Log:            log,
		}, mech, nil
	case types.ModeXAI:
		xaiKey, _ := keys.Lookup(secrets.XAIKey)
		return &SingleStage{
			Provider:  &XAIProvider{APIKey: xaiKey, Client: client},
			Model:     cfg.XAI.Model,
			MaxTokens: cfg.XAI.MaxTokens,
			Domain:    domain,
			Fallback:  mech,
			Log:       log,
		}, mech, nil
	default:
		return nil, nil, &errs.ConfigurationError{
			Op:     "scoring",
			Reason: fmt.Sprintf("unknown scoring mode %q", cfg.Mode),
			Hint:   "use one of: mechanical, ai, ai-two-stage, xai",
		}
	}
}
