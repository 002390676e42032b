// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package curate runs one batch curation: fetch, score, select and record.
package curate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/curator/internal/feed"
	"github.com/pdiddy/curator/internal/history"
	"github.com/pdiddy/curator/internal/httputil"
	"github.com/pdiddy/curator/internal/preferences"
	"github.com/pdiddy/curator/internal/priority"
	"github.com/pdiddy/curator/internal/profile"
	"github.com/pdiddy/curator/internal/scoring"
	"github.com/pdiddy/curator/internal/selector"
	"github.com/pdiddy/curator/internal/signalstore"
	"github.com/pdiddy/curator/pkg/types"
)

const dateLayout = "2006-01-02"

// ErrNoArticles is returned when every feed came back empty or failed.
var ErrNoArticles = errors.New("no articles fetched from any feed")

// Deps are the collaborators a run reads from and writes to.
type Deps struct {
	Fetcher    feed.Fetcher
	Scorer     scoring.Scorer
	Mechanical *scoring.Mechanical

	Prefs      *preferences.Store
	Priorities *priority.Store
	Interests  *priority.Interests
	History    *history.Store
	Signals    *signalstore.Log

	Log zerolog.Logger

	// Out receives the briefing; nil discards it.
	Out io.Writer
}

// Options configure one run.
type Options struct {
	Sources    []types.FeedSource
	FetchDelay time.Duration

	// Fallback downgrades the whole batch to mechanical scoring on a
	// recoverable backend failure instead of aborting.
	Fallback bool

	TopN            int
	DiversityWeight float64

	// SerendipityReserve overrides the preferences document when set.
	SerendipityReserve *float64

	MinWeight    int
	ActiveDomain string

	// Model is recorded on article_scored events.
	Model string

	// DryRun skips history, event, priority-expiry and match-count writes.
	DryRun bool

	Now time.Time
}

// Result summarises a run.
type Result struct {
	Date              string
	Selected          []types.Article
	PersonalizedCount int
	SerendipityCount  int
	Method            types.Method
	Degraded          bool
	Fetch             feed.FetchSummary
	Expired           []types.Priority
	Profile           profile.Profile
}

// Run executes the pipeline.
func Run(ctx context.Context, d Deps, opts Options) (Result, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	log := d.Log
	res := Result{Date: now.Format(dateLayout)}

	expire := d.Priorities.ExpireDue
	if opts.DryRun {
		expire = d.Priorities.Due
	}
	expired, err := expire(now)
	if err != nil {
		return res, fmt.Errorf("expiring priorities: %w", err)
	}
	res.Expired = expired
	for _, p := range expired {
		log.Info().Str("priority_id", p.ID).Str("label", p.Label).Msg("priority expired")
		if !opts.DryRun {
			if err := d.Signals.PriorityExpired(p); err != nil {
				return res, err
			}
		}
	}

	priorities, err := d.Priorities.Active(now)
	if err != nil {
		return res, fmt.Errorf("loading priorities: %w", err)
	}
	interests, err := d.Interests.Active(now)
	if err != nil {
		return res, fmt.Errorf("loading interests: %w", err)
	}

	prefs, err := d.Prefs.Load()
	if err != nil {
		return res, fmt.Errorf("loading preferences: %w", err)
	}
	res.Profile = profile.Build(prefs.LearnedPatterns, profile.Options{
		MinWeight:    opts.MinWeight,
		ActiveDomain: opts.ActiveDomain,
		Now:          now,
	})
	reserve := prefs.CurationSettings.SerendipityReserve
	if opts.SerendipityReserve != nil {
		reserve = *opts.SerendipityReserve
	}
	log.Info().
		Int("priorities", len(priorities)).
		Int("interests", len(interests)).
		Int("profile_samples", res.Profile.SampleSize).
		Float64("serendipity_reserve", reserve).
		Msg("inputs loaded")

	pool, sum, err := feed.FetchAll(ctx, d.Fetcher, opts.Sources, &httputil.Pacer{Delay: opts.FetchDelay}, log)
	res.Fetch = sum
	if err != nil {
		return res, err
	}
	if !opts.DryRun {
		for _, f := range sum.Failures {
			if err := d.Signals.SourceChange(f.Source, "active", "fetch_failed", f.Reason); err != nil {
				return res, err
			}
		}
	}
	if len(pool) == 0 {
		return res, ErrNoArticles
	}
	log.Info().Int("articles", sum.Articles).Int("failed_feeds", sum.Failed).Msg("feeds fetched")

	outcome, err := scoring.Run(ctx, d.Scorer, d.Mechanical, pool, res.Profile.Text(), opts.Fallback, log)
	if err != nil {
		return res, err
	}
	res.Method, res.Degraded = outcome.Method, outcome.Degraded

	sel := selector.Select(outcome.Articles, selector.Options{
		TopN:               opts.TopN,
		DiversityWeight:    opts.DiversityWeight,
		SerendipityReserve: reserve,
		Priorities:         priorities,
		Interests:          interests,
		Now:                now,
	})
	res.Selected = sel.Selected
	res.PersonalizedCount = sel.PersonalizedCount
	res.SerendipityCount = sel.SerendipityCount

	if !opts.DryRun {
		if err := record(ctx, d, opts, res, priorities, sel.PriorityMatches); err != nil {
			return res, err
		}
	}

	log.Info().
		Int("selected", len(res.Selected)).
		Int("personalized", res.PersonalizedCount).
		Int("serendipity", res.SerendipityCount).
		Str("method", string(res.Method)).
		Bool("degraded", res.Degraded).
		Msg("curation complete")

	if d.Out != nil {
		WriteBriefing(d.Out, res)
	}
	return res, nil
}

func record(ctx context.Context, d Deps, opts Options, res Result, priorities []types.Priority, matches map[string]int) error {
	if err := d.History.Record(ctx, res.Selected, res.Date); err != nil {
		return fmt.Errorf("recording history: %w", err)
	}

	byID := make(map[string]types.Priority, len(priorities))
	for _, p := range priorities {
		byID[p.ID] = p
	}
	model := opts.Model
	if res.Method == types.MethodMechanical {
		model = ""
	}
	for i, a := range res.Selected {
		if err := d.Signals.ArticleScored(a, i+1, model); err != nil {
			return err
		}
		for _, id := range a.MatchedPriorities {
			if err := d.Signals.PriorityMatch(byID[id], a); err != nil {
				return err
			}
		}
	}

	if err := d.Priorities.RecordMatches(matches); err != nil {
		return fmt.Errorf("updating priority match counts: %w", err)
	}
	return nil
}
