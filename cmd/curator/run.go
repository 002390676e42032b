// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/curator/internal/curate"
	"github.com/pdiddy/curator/internal/feed"
	"github.com/pdiddy/curator/internal/scoring"
	"github.com/pdiddy/curator/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, score and select today's briefing",
	Long: `Run fetches every configured feed, scores the pool with the selected
mode, and picks the briefing in two phases: a personalized phase that
applies priority and interest boosts, then a serendipity phase on raw scores.

Modes: mechanical (keywords, recency, source weight), ai (single model
call), ai-two-stage (cheap prefilter to top-K, then a ranking model), xai.

Without --fallback any scoring failure aborts the run. With --fallback a
configuration or transient provider failure rescores the whole batch
mechanically; billing failures always abort.

The selection is written to history and the event log so that later
feedback can refer to articles as YYYY-MM-DD-N or yesterday-N.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var reserve *float64
	if viper.IsSet("selection.serendipity_reserve") {
		v := cfg.Selection.SerendipityReserve
		reserve = &v
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	st, err := openStores(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	scorer, mech, err := scoring.New(cfg.Scoring, cfg.Profile.ActiveDomain, loadedSecrets, cfg.Feeds.SourceWeights(), logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info().
		Str("mode", string(cfg.Scoring.Mode)).
		Bool("fallback", cfg.Scoring.Fallback).
		Str("session_id", st.signals.SessionID()).
		Msg("starting curation")

	_, err = curate.Run(ctx, curate.Deps{
		Fetcher:    feed.NewRSSFetcher(cfg.Feeds),
		Scorer:     scorer,
		Mechanical: mech,
		Prefs:      st.prefs,
		Priorities: st.priorities,
		Interests:  st.interests,
		History:    st.history,
		Signals:    st.signals,
		Log:        logger,
		Out:        os.Stdout,
	}, curate.Options{
		Sources:            cfg.Feeds.Sources,
		FetchDelay:         cfg.Feeds.FetchDelay,
		Fallback:           cfg.Scoring.Fallback,
		TopN:               cfg.Selection.TopN,
		DiversityWeight:    cfg.Selection.DiversityWeight,
		SerendipityReserve: reserve,
		MinWeight:          cfg.Profile.MinWeight,
		ActiveDomain:       cfg.Profile.ActiveDomain,
		Model:              modelFor(cfg.Scoring),
		DryRun:             dryRun,
	})
	return err
}

func init() {
	def := types.DefaultConfig()
	f := runCmd.Flags()
	f.String("mode", string(def.Scoring.Mode), "scoring mode: mechanical, ai, ai-two-stage, xai")
	f.Bool("fallback", def.Scoring.Fallback, "rescore mechanically when the model backend fails")
	f.Int("top-n", def.Selection.TopN, "number of articles to select")
	f.Float64("diversity", def.Selection.DiversityWeight, "diversity weight for source and category penalties")
	f.Float64("serendipity", def.Selection.SerendipityReserve, "share of the briefing picked without personalization (default: from preferences)")
	f.Int("prefilter-top-k", def.Scoring.PrefilterTopK, "candidates kept after the two-stage prefilter")
	f.Bool("dry-run", false, "select and print without writing history, events or priority state")

	_ = viper.BindPFlag("scoring.mode", f.Lookup("mode"))
	_ = viper.BindPFlag("scoring.fallback", f.Lookup("fallback"))
	_ = viper.BindPFlag("scoring.prefilter_top_k", f.Lookup("prefilter-top-k"))
	_ = viper.BindPFlag("selection.top_n", f.Lookup("top-n"))
	_ = viper.BindPFlag("selection.diversity_weight", f.Lookup("diversity"))
	_ = viper.BindPFlag("selection.serendipity_reserve", f.Lookup("serendipity"))

	rootCmd.AddCommand(runCmd)
}
