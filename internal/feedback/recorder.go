// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feedback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/curator/internal/preferences"
	"github.com/pdiddy/curator/internal/signalstore"
	"github.com/pdiddy/curator/pkg/types"
)

const dateLayout = "2006-01-02"

// Input is one reaction to record.
type Input struct {
	Article types.Article
	Rank    int
	Action  types.Action
	Reason  string
	Channel string
}

// Recorder appends feedback to the preferences document and the event log
// and updates learned patterns.
type Recorder struct {
	Prefs     *preferences.Store
	Signals   *signalstore.Log
	Extractor Extractor
	Log       zerolog.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Record extracts metadata, files the event under today's bucket, updates
// the learned patterns and saves. Recording the same reaction twice yields
// two events. Extraction failures degrade to a placeholder and never fail
// the call.
func (r *Recorder) Record(ctx context.Context, in Input) (types.FeedbackEvent, error) {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}

	a := in.Article
	if a.ID == "" && a.Link != "" {
		a.ID = types.ArticleID(a.Link)
	}
	if a.ID == "" {
		return types.FeedbackEvent{}, errors.New("feedback needs an article ID or URL")
	}
	if in.Channel == "" {
		in.Channel = types.ChannelCLI
	}

	ext := r.Extractor
	if ext == nil {
		ext = ManualExtractor{}
	}
	meta, err := ext.Extract(ctx, a, in.Reason, in.Action)
	if err != nil {
		r.Log.Warn().Err(err).Str("article_id", a.ID).Msg("metadata extraction failed, using placeholder")
	}
	meta.Source = a.Source

	ev := types.FeedbackEvent{
		ArticleID:  a.ID,
		Action:     in.Action,
		Channel:    in.Channel,
		ReasonText: in.Reason,
		Metadata:   meta,
		Timestamp:  now,
		Rank:       in.Rank,
		URL:        a.Link,
		Title:      a.Title,
		Source:     a.Source,
		Category:   a.Category,
	}

	_, err = r.Prefs.Update(func(p *types.Preferences) error {
		p.Day(now.Format(dateLayout)).Append(ev)
		Learn(&p.LearnedPatterns, meta, in.Action, now)
		return nil
	})
	if err != nil {
		return ev, fmt.Errorf("saving feedback: %w", err)
	}

	if r.Signals != nil {
		if err := r.Signals.Feedback(ev); err != nil {
			return ev, fmt.Errorf("logging feedback event: %w", err)
		}
	}

	r.Log.Info().
		Str("article_id", ev.ArticleID).
		Str("action", string(ev.Action)).
		Str("channel", ev.Channel).
		Strs("content_type", meta.ContentType).
		Strs("themes", meta.Themes).
		Msg("feedback recorded")
	return ev, nil
}

// DaySummary is one day of feedback for display.
type DaySummary struct {
	Date string
	types.FeedbackDay
}

// Recent returns up to days non-empty feedback days, newest first.
func Recent(p *types.Preferences, days int) []DaySummary {
	dates := make([]string, 0, len(p.FeedbackHistory))
	for d := range p.FeedbackHistory {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	var out []DaySummary
	for _, d := range dates {
		if len(out) >= days {
			break
		}
		day := p.FeedbackHistory[d]
		if day == nil || day.Len() == 0 {
			continue
		}
		out = append(out, DaySummary{Date: d, FeedbackDay: *day})
	}
	return out
}
