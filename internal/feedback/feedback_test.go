// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feedback

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/curator/internal/preferences"
	"github.com/pdiddy/curator/internal/scoring"
	"github.com/pdiddy/curator/internal/signalstore"
	"github.com/pdiddy/curator/pkg/types"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type stubProvider struct {
	reply  string
	err    error
	prompt string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, req scoring.Request) (string, error) {
	s.prompt = req.Prompt
	return s.reply, s.err
}

func TestLearnWeights(t *testing.T) {
	tests := []struct {
		action types.Action
		want   int
	}{
		{types.ActionLike, 2},
		{types.ActionSave, 1},
		{types.ActionDislike, -1},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			p := types.NewLearnedPatterns()
			m := types.ExtractedMetadata{
				ContentType: []string{"analytical"},
				Themes:      []string{"fiscal_policy"},
				Signals:     []string{"clickbait", "shallow"},
				Source:      "Reuters",
			}
			Learn(&p, m, tt.action, now)

			assert.Equal(t, tt.want, p.PreferredThemes["fiscal_policy"])
			assert.Equal(t, tt.want, p.PreferredContentTypes["analytical"])
			assert.Equal(t, tt.want, p.PreferredSources["Reuters"])
			assert.Equal(t, 1, p.SampleSize)
			require.NotNil(t, p.LastUpdated)
			assert.Equal(t, now, *p.LastUpdated)

			if tt.action == types.ActionDislike {
				assert.Equal(t, map[string]int{"clickbait": 1, "shallow": 1}, p.AvoidPatterns)
			} else {
				assert.Empty(t, p.AvoidPatterns)
			}
		})
	}
}

func TestLearnAccumulates(t *testing.T) {
	p := types.NewLearnedPatterns()
	p.PreferredThemes["fiscal_policy"] = 3
	Learn(&p, types.ExtractedMetadata{Themes: []string{"fiscal_policy"}}, types.ActionLike, now)
	assert.Equal(t, 5, p.PreferredThemes["fiscal_policy"])
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripCodeFence(tt.in))
	}
}

func TestParseMetadata(t *testing.T) {
	m, err := ParseMetadata("```json\n" + `{"content_type":["analytical"," "],"appeal":["depth"],"style":[],"themes":["geopolitics"],"depth":"deep_dive","signals":["original"],"source":"injected"}` + "\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"analytical"}, m.ContentType)
	assert.Equal(t, "deep_dive", m.Depth)
	assert.Empty(t, m.Source, "source comes from the article, not the model")

	m, err = ParseMetadata("I think the reader liked it.")
	assert.Error(t, err)
	assert.Equal(t, []string{ContentUnknown}, m.ContentType)
}

func TestLLMExtractor(t *testing.T) {
	a := types.Article{Title: "Debt ceiling showdown", Source: "FT", Category: types.CategoryFiscal}

	prov := &stubProvider{reply: `{"content_type":["analytical"],"themes":["fiscal_policy"],"depth":"deep_dive"}`}
	e := &LLMExtractor{Provider: prov, Model: "m", MaxTokens: 500}
	m, err := e.Extract(context.Background(), a, "great breakdown of the numbers", types.ActionLike)
	require.NoError(t, err)
	assert.Equal(t, []string{"fiscal_policy"}, m.Themes)
	assert.Contains(t, prov.prompt, "Reader feedback (liked)")
	assert.Contains(t, prov.prompt, `"great breakdown of the numbers"`)

	failing := &LLMExtractor{Provider: &stubProvider{err: errors.New("timeout")}}
	m, err = failing.Extract(context.Background(), a, "x", types.ActionLike)
	assert.Error(t, err)
	assert.Equal(t, []string{ContentUnknown}, m.ContentType)
}

func TestManualExtractor(t *testing.T) {
	m, err := ManualExtractor{}.Extract(context.Background(), types.Article{}, "", types.ActionSave)
	require.NoError(t, err)
	assert.Equal(t, []string{ContentManualEntry}, m.ContentType)
}

func newRecorder(t *testing.T, ext Extractor) (*Recorder, *preferences.Store, *signalstore.Log) {
	t.Helper()
	dir := t.TempDir()
	prefs := preferences.NewStore(filepath.Join(dir, "prefs.json"))
	sig := signalstore.Open(filepath.Join(dir, "signals.jsonl"), "session-1")
	return &Recorder{Prefs: prefs, Signals: sig, Extractor: ext, Log: zerolog.Nop(), Now: func() time.Time { return now }}, prefs, sig
}

func TestRecordLike(t *testing.T) {
	prov := &stubProvider{reply: `{"content_type":["analytical"],"themes":["fiscal_policy"],"signals":[],"depth":"deep_dive"}`}
	r, prefs, sig := newRecorder(t, &LLMExtractor{Provider: prov})

	link := "https://example.com/debt?utm_source=tg"
	a := types.Article{Title: "Debt", Source: "FT", Category: types.CategoryFiscal, Link: link}
	ev, err := r.Record(context.Background(), Input{Article: a, Rank: 3, Action: types.ActionLike, Reason: "sharp"})
	require.NoError(t, err)
	assert.Equal(t, types.ArticleID("https://example.com/debt"), ev.ArticleID)
	assert.Equal(t, types.ChannelCLI, ev.Channel)
	assert.Equal(t, "FT", ev.Metadata.Source)

	p, err := prefs.Load()
	require.NoError(t, err)
	day := p.FeedbackHistory["2026-03-02"]
	require.NotNil(t, day)
	require.Len(t, day.Liked, 1)
	assert.Equal(t, "sharp", day.Liked[0].ReasonText)
	assert.Equal(t, 2, p.LearnedPatterns.PreferredThemes["fiscal_policy"])
	assert.Equal(t, 2, p.LearnedPatterns.PreferredSources["FT"])
	assert.Equal(t, 1, p.LearnedPatterns.SampleSize)

	hist, err := sig.ArticleHistory(context.Background(), ev.ArticleID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "session-1", hist[0].SessionID)
	assert.Equal(t, "like", hist[0].Data["action"])
}

func TestRecordDegradesOnExtractionFailure(t *testing.T) {
	r, prefs, _ := newRecorder(t, &LLMExtractor{Provider: &stubProvider{reply: "not json"}})

	a := types.Article{ID: "abc", Title: "Noise", Source: "Tabloid"}
	ev, err := r.Record(context.Background(), Input{Article: a, Action: types.ActionDislike, Reason: "clickbait"})
	require.NoError(t, err)
	assert.Equal(t, []string{ContentUnknown}, ev.Metadata.ContentType)

	p, err := prefs.Load()
	require.NoError(t, err)
	assert.Equal(t, -1, p.LearnedPatterns.PreferredSources["Tabloid"])
	assert.Equal(t, -1, p.LearnedPatterns.PreferredContentTypes[ContentUnknown])
}

func TestRecordTwiceAppendsTwice(t *testing.T) {
	r, prefs, _ := newRecorder(t, nil)
	in := Input{Article: types.Article{ID: "abc", Source: "FT"}, Action: types.ActionSave}
	_, err := r.Record(context.Background(), in)
	require.NoError(t, err)
	_, err = r.Record(context.Background(), in)
	require.NoError(t, err)

	p, err := prefs.Load()
	require.NoError(t, err)
	assert.Len(t, p.FeedbackHistory["2026-03-02"].Saved, 2)
	assert.Equal(t, 2, p.LearnedPatterns.SampleSize)
	assert.Equal(t, 2, p.Revision)
}

func TestRecordRequiresArticle(t *testing.T) {
	r, _, _ := newRecorder(t, nil)
	_, err := r.Record(context.Background(), Input{Action: types.ActionLike})
	assert.Error(t, err)
}

func TestRecent(t *testing.T) {
	p := types.NewPreferences()
	for _, d := range []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"} {
		p.Day(d).Append(types.FeedbackEvent{Action: types.ActionLike, Title: d})
	}
	p.Day("2026-03-03")

	got := Recent(p, 3)
	require.Len(t, got, 3)
	dates := make([]string, len(got))
	for i, d := range got {
		dates[i] = d.Date
	}
	assert.Equal(t, "2026-03-02,2026-03-01,2026-02-28", strings.Join(dates, ","))
}
