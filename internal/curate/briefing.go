// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package curate

import (
	"fmt"
	"io"
	"strings"
)

const briefingSummaryChars = 150

// WriteBriefing prints the ranked selection. Each entry carries the
// reference (date-rank) and article ID that feedback commands accept.
func WriteBriefing(w io.Writer, res Result) {
	rule := strings.Repeat("=", 80)
	fmt.Fprintf(w, "\n%s\nTOP %d CURATED ARTICLES  %s  (%s", rule, len(res.Selected), res.Date, res.Method)
	if res.Degraded {
		fmt.Fprint(w, ", degraded")
	}
	fmt.Fprintf(w, ")\n%d personalized, %d serendipity\n%s\n\n", res.PersonalizedCount, res.SerendipityCount, rule)

	for i, a := range res.Selected {
		var flags []string
		if a.SerendipityPick {
			flags = append(flags, "serendipity")
		}
		if a.PrioritiesBoosted {
			flags = append(flags, fmt.Sprintf("priority %+.1f", a.PriorityBoost))
		}
		if a.InterestBoosted {
			flags = append(flags, fmt.Sprintf("interest %+.0f", a.InterestModifier))
		}

		fmt.Fprintf(w, "#%d [%s] %s", i+1, a.Source, a.Category)
		if len(flags) > 0 {
			fmt.Fprintf(w, " (%s)", strings.Join(flags, ", "))
		}
		fmt.Fprintf(w, "\n   %s\n   %s\n", a.Title, a.Link)

		pub := "unknown date"
		if !a.PublishedAt.IsZero() {
			pub = a.PublishedAt.UTC().Format("2006-01-02 15:04 UTC")
		}
		fmt.Fprintf(w, "   Published: %s\n", pub)
		fmt.Fprintf(w, "   Score: %.1f/10  final: %.1f  ref: %s-%d  id: %s\n", a.RawScore, a.FinalScore, res.Date, i+1, a.ID)

		if a.Summary != "" {
			s := strings.Join(strings.Fields(a.Summary), " ")
			if r := []rune(s); len(r) > briefingSummaryChars {
				s = string(r[:briefingSummaryChars]) + "..."
			}
			fmt.Fprintf(w, "   %s\n", s)
		}
		fmt.Fprintln(w)
	}
}
