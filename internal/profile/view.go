// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/curator/pkg/types"
)

const (
	barWidth  = 16
	ruleWidth = 56
	staleDays = 30
)

// View renders the human-readable profile report.
type View struct {
	ActiveDomain string
	Verbose      bool

	title   lipgloss.Style
	section lipgloss.Style
	dim     lipgloss.Style
	pos     lipgloss.Style
	neg     lipgloss.Style
}

// NewView builds a View whose styles adapt to w's terminal capabilities;
// non-terminal writers get plain text.
func NewView(w io.Writer, activeDomain string) *View {
	r := lipgloss.NewRenderer(w)
	return &View{
		ActiveDomain: activeDomain,
		title:        r.NewStyle().Bold(true),
		section:      r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}),
		dim:          r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}),
		pos:          r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}),
		neg:          r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D0342C", Dark: "#F25D94"}),
	}
}

// Write renders prefs to w. prof supplies the staleness and threshold
// computed by Build.
func (v *View) Write(w io.Writer, prefs *types.Preferences, prof Profile) error {
	lp := prefs.LearnedPatterns
	var sb strings.Builder

	liked, disliked, saved := 0, 0, 0
	for _, d := range prefs.FeedbackHistory {
		if d == nil {
			continue
		}
		liked += len(d.Liked)
		disliked += len(d.Disliked)
		saved += len(d.Saved)
	}

	updated, staleness := "never", "unknown"
	if lp.LastUpdated != nil {
		updated = lp.LastUpdated.Format("2006-01-02")
		staleness = fmt.Sprintf("%dd ago", prof.DaysStale)
	}

	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(&sb, "\n%s\n  %s\n%s\n", rule, v.title.Render("CURATOR LEARNED PROFILE"), rule)
	fmt.Fprintf(&sb, "  Interactions : %d scored signals from %d feedback events\n", lp.SampleSize, liked+disliked+saved)
	fmt.Fprintf(&sb, "  Last updated : %s (%s)\n", updated, staleness)
	fmt.Fprintf(&sb, "  Feedback     : %d liked  |  %d disliked  |  %d saved\n", liked, disliked, saved)
	sb.WriteString(rule + "\n")

	v.weights(&sb, "SOURCES", lp.PreferredSources, nil)
	v.weights(&sb, "THEMES", lp.PreferredThemes, nil)
	v.weights(&sb, "CONTENT STYLE", lp.PreferredContentTypes, map[string]bool{ExcludedContentType: true})

	if avoid := ranked(lp.AvoidPatterns, func(int) bool { return true }); len(avoid) > 0 {
		v.heading(&sb, "AVOID PATTERNS")
		for _, e := range avoid {
			fmt.Fprintf(&sb, "  %-10s  (%dx)  %s\n", strings.Repeat("▪", max(0, min(e.Weight, 10))), e.Weight, e.Name)
		}
	}

	if v.ActiveDomain != "" {
		sig := ranked(lp.DomainSignals[v.ActiveDomain], func(w int) bool { return w >= DomainSignalMin })
		if len(sig) > 0 {
			v.heading(&sb, "DOMAIN SIGNALS ("+v.ActiveDomain+")")
			top := sig[0].Weight
			for _, e := range head(sig, DomainSignalCap) {
				fmt.Fprintf(&sb, "  %s  %4d  %s\n", v.pos.Render(bar(e.Weight, top)), e.Weight, e.Name)
			}
		}
	}

	v.heading(&sb, "SETTINGS")
	fmt.Fprintf(&sb, "  Serendipity reserve : %d%%  (articles from outside learned patterns)\n",
		int(prefs.CurationSettings.SerendipityReserve*100+0.5))
	fmt.Fprintf(&sb, "  Inclusion threshold : |weight| >= %d\n", prof.MinWeight)

	if lp.LastUpdated != nil && prof.DaysStale > staleDays {
		fmt.Fprintf(&sb, "\n  %s\n", v.dim.Render(fmt.Sprintf(
			"NOTE: Data is %dd old, decay gate active (weaker signals filtered)", prof.DaysStale)))
	}

	if v.Verbose {
		v.history(&sb, prefs.FeedbackHistory)
	}

	sb.WriteString("\n" + rule + "\n\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func (v *View) heading(sb *strings.Builder, name string) {
	fmt.Fprintf(sb, "\n  %s\n  %s\n", v.section.Render(name), strings.Repeat("-", len([]rune(name))))
}

func (v *View) weights(sb *strings.Builder, name string, m map[string]int, exclude map[string]bool) {
	entries := dropNames(ranked(m, func(int) bool { return true }), exclude)
	if len(entries) == 0 {
		return
	}
	v.heading(sb, name)

	top := 1
	for _, e := range entries {
		if a := abs(e.Weight); a > top {
			top = a
		}
	}
	for _, e := range entries {
		style := v.pos
		if e.Weight < 0 {
			style = v.neg
		}
		fmt.Fprintf(sb, "  %s  %+4d  %s\n", style.Render(bar(e.Weight, top)), e.Weight, e.Name)
	}
}

func (v *View) history(sb *strings.Builder, hist map[string]*types.FeedbackDay) {
	if len(hist) == 0 {
		return
	}
	v.heading(sb, "FEEDBACK HISTORY")
	dates := make([]string, 0, len(hist))
	for d := range hist {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	for _, date := range dates {
		day := hist[date]
		if day == nil {
			continue
		}
		fmt.Fprintf(sb, "\n  %s  (%d liked, %d disliked, %d saved)\n", date, len(day.Liked), len(day.Disliked), len(day.Saved))
		for _, group := range []struct {
			mark   string
			events []types.FeedbackEvent
		}{{"+", day.Liked}, {"*", day.Saved}, {"-", day.Disliked}} {
			for _, ev := range group.events {
				src := ev.Source
				if src == "" {
					src = "?"
				}
				fmt.Fprintf(sb, "    %s [%s] %s\n", group.mark, src, truncate(ev.Title, 60))
			}
		}
	}
}

func bar(value, top int) string {
	filled := 0
	if top > 0 {
		filled = abs(value) * barWidth / top
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
