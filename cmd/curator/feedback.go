// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/curator/internal/feedback"
	"github.com/pdiddy/curator/internal/history"
	"github.com/pdiddy/curator/pkg/types"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Record or review reactions to articles",
	Long: `Feedback records a like, dislike or save for an article from a briefing.
Articles are referenced by ID, by YYYY-MM-DD-N (rank N in that day's
briefing), by today-N or yesterday-N, or by URL.

The optional reason is analysed into content type, themes and signals
that update the learned profile: like +2, save +1, dislike -1.`,
}

func newActionCmd(action types.Action, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(action) + " <ref> [reason...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(cmd, action, args[0], strings.Join(args[1:], " "))
		},
	}
	cmd.Flags().String("channel", types.ChannelCLI, "where the feedback came from: cli, web_ui, telegram")
	cmd.Flags().Bool("no-extract", false, "skip model metadata extraction")
	return cmd
}

func runFeedback(cmd *cobra.Command, action types.Action, ref, reason string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStores(cfg, true)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	now := time.Now()
	a, rank, err := resolveArticle(ctx, st.history, ref, now)
	if err != nil {
		return err
	}

	channel, _ := cmd.Flags().GetString("channel")
	noExtract, _ := cmd.Flags().GetBool("no-extract")
	ext := newExtractor(cfg)
	if noExtract {
		ext = feedback.ManualExtractor{}
	}

	rec := &feedback.Recorder{
		Prefs:     st.prefs,
		Signals:   st.signals,
		Extractor: ext,
		Log:       logger,
	}
	ev, err := rec.Record(ctx, feedback.Input{Article: a, Rank: rank, Action: action, Reason: reason, Channel: channel})
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %s for %s\n", action, titleOr(ev.Title, ev.ArticleID))
	m := ev.Metadata
	if len(m.ContentType) > 0 {
		fmt.Printf("  content: %s\n", strings.Join(m.ContentType, ", "))
	}
	if len(m.Themes) > 0 {
		fmt.Printf("  themes:  %s\n", strings.Join(m.Themes, ", "))
	}
	if len(m.Signals) > 0 {
		fmt.Printf("  signals: %s\n", strings.Join(m.Signals, ", "))
	}
	return nil
}

// resolveArticle looks ref up in history. A URL that history does not
// know is accepted as-is so feedback can be given on anything.
func resolveArticle(ctx context.Context, h *history.Store, ref string, now time.Time) (types.Article, int, error) {
	e, err := h.Resolve(ctx, ref, now)
	if err == nil {
		rank := 0
		if n := len(e.Appearances); n > 0 {
			rank = e.Appearances[n-1].Rank
		}
		return e.Article(), rank, nil
	}
	if errors.Is(err, history.ErrNotFound) && strings.HasPrefix(ref, "http") {
		if e, err := h.Get(ctx, types.ArticleID(ref)); err == nil {
			return e.Article(), 0, nil
		}
		return types.Article{Link: ref, ID: types.ArticleID(ref)}, 0, nil
	}
	return types.Article{}, 0, err
}

func titleOr(title, fallback string) string {
	if title != "" {
		return title
	}
	return fallback
}

var feedbackShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show recent feedback",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		days, _ := cmd.Flags().GetInt("days")

		p, err := openPrefs(cfg)
		if err != nil {
			return err
		}
		recent := feedback.Recent(p, days)
		if len(recent) == 0 {
			fmt.Println("No feedback recorded yet.")
			return nil
		}
		for _, d := range recent {
			fmt.Fprintf(os.Stdout, "%s  (%d liked, %d disliked, %d saved)\n", d.Date, len(d.Liked), len(d.Disliked), len(d.Saved))
			for _, group := range [][]types.FeedbackEvent{d.Liked, d.Saved, d.Disliked} {
				for _, ev := range group {
					line := fmt.Sprintf("  %-8s [%s] %s", ev.Action, ev.Source, titleOr(ev.Title, ev.ArticleID))
					if ev.ReasonText != "" {
						line += fmt.Sprintf("  %q", ev.ReasonText)
					}
					fmt.Println(line)
				}
			}
		}
		return nil
	},
}

func openPrefs(cfg types.Config) (*types.Preferences, error) {
	st, err := openStores(cfg, false)
	if err != nil {
		return nil, err
	}
	return st.prefs.Load()
}

func init() {
	feedbackShowCmd.Flags().Int("days", 7, "number of recent feedback days to show")

	feedbackCmd.AddCommand(newActionCmd(types.ActionLike, "Record that you liked an article"))
	feedbackCmd.AddCommand(newActionCmd(types.ActionDislike, "Record that you disliked an article"))
	feedbackCmd.AddCommand(newActionCmd(types.ActionSave, "Save an article to revisit"))
	feedbackCmd.AddCommand(feedbackShowCmd)

	rootCmd.AddCommand(feedbackCmd)
}
