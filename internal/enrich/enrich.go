// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/curator/internal/preferences"
	"github.com/pdiddy/curator/pkg/types"
)

// Options control one enrichment run.
type Options struct {
	// Full ignores the processed-item cache.
	Full bool

	// DryRun scores and reports without saving.
	DryRun bool
}

// LabelReport is the outcome for one knowledge-domain label.
type LabelReport struct {
	Label  string
	Items  int
	Cached int

	// Skipped is set when every item was already processed.
	Skipped bool

	Scores []DomainScore
	Stats  Stats
}

// Report is the outcome of a run, labels ordered by item count.
type Report struct {
	Labels  []LabelReport
	DryRun  bool
	Written int
}

// Enricher merges bookmark-derived domain signals into preferences.
type Enricher struct {
	Prefs  *preferences.Store
	Config types.EnrichConfig
	Log    zerolog.Logger
}

// Group buckets items by the label of their folder. Unknown or empty
// folders go to the default domain.
func Group(items []Item, folders map[string]string, fallback string) map[string][]Item {
	out := make(map[string][]Item)
	for _, it := range items {
		label, ok := folders[it.Folder]
		if !ok || label == "" {
			label = fallback
		}
		out[label] = append(out[label], it)
	}
	return out
}

// Run scores each label's new items and adds the scores to
// domain_signals[label]. Existing scores are never overwritten.
func (e *Enricher) Run(items []Item, opts Options) (Report, error) {
	fallback := e.Config.DefaultDomain
	if fallback == "" {
		fallback = types.ActiveDomain
	}
	groups := Group(items, e.Config.KnownFolders, fallback)

	labels := make([]string, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		if len(groups[labels[i]]) != len(groups[labels[j]]) {
			return len(groups[labels[i]]) > len(groups[labels[j]])
		}
		return labels[i] < labels[j]
	})

	report := Report{DryRun: opts.DryRun}
	apply := func(p *types.Preferences) error {
		for _, label := range labels {
			lr := e.enrichLabel(p, label, groups[label], opts)
			report.Labels = append(report.Labels, lr)
		}
		return nil
	}

	if opts.DryRun {
		p, err := e.Prefs.Load()
		if err != nil {
			return report, err
		}
		return report, apply(p)
	}
	if _, err := e.Prefs.Update(apply); err != nil {
		return report, fmt.Errorf("saving domain signals: %w", err)
	}
	return report, nil
}

func (e *Enricher) enrichLabel(p *types.Preferences, label string, items []Item, opts Options) LabelReport {
	lr := LabelReport{Label: label, Items: len(items)}

	processed := make(map[string]bool)
	if !opts.Full {
		for _, id := range p.EnrichCache[label] {
			processed[id] = true
		}
	}
	var fresh []Item
	for _, it := range items {
		if it.ID == "" || !processed[it.ID] {
			fresh = append(fresh, it)
		} else {
			lr.Cached++
		}
	}
	if len(fresh) == 0 {
		lr.Skipped = true
		e.Log.Info().Str("label", label).Int("items", len(items)).Msg("all items already processed")
		return lr
	}

	lr.Scores, lr.Stats = Score(fresh, e.Config.MaxDomainsPerCurator, e.minScore())
	if opts.DryRun {
		return lr
	}

	signals := p.LearnedPatterns.DomainSignals[label]
	if signals == nil {
		signals = make(map[string]int)
		p.LearnedPatterns.DomainSignals[label] = signals
	}
	for _, ds := range lr.Scores {
		signals[ds.Domain] += ds.Score
	}

	for _, id := range p.EnrichCache[label] {
		processed[id] = true
	}
	for _, it := range fresh {
		if it.ID != "" {
			processed[it.ID] = true
		}
	}
	ids := make([]string, 0, len(processed))
	for id := range processed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	p.EnrichCache[label] = ids

	e.Log.Info().Str("label", label).Int("items", len(fresh)).Int("domains", len(lr.Scores)).Msg("domain signals merged")
	return lr
}

func (e *Enricher) minScore() int {
	if e.Config.MinDomainScore > 0 {
		return e.Config.MinDomainScore
	}
	return 2
}

const reportTop = 15

// WriteReport prints per-label statistics and the top domains.
func WriteReport(w io.Writer, r Report, minScore int, verbose bool) {
	if r.DryRun {
		fmt.Fprintln(w, "dry run: nothing written")
	}
	for _, lr := range r.Labels {
		fmt.Fprintf(w, "\n[%s]\n  %s\n", lr.Label, strings.Repeat("─", 48))
		if lr.Skipped {
			fmt.Fprintf(w, "  all %d items already processed; use --full to reprocess\n", lr.Items)
			continue
		}
		if lr.Cached > 0 {
			fmt.Fprintf(w, "  %d cached, %d new\n", lr.Cached, lr.Items-lr.Cached)
		}
		st := lr.Stats
		fmt.Fprintf(w, "  Items:     %d  |  With links: %d  |  Text-only: %d\n", st.Items, st.WithLinks, st.TextOnly)
		fmt.Fprintf(w, "  Curators:  %d with links of %d total\n", st.CuratorsWithLinks, st.TotalCurators)
		fmt.Fprintf(w, "  Domains:   %d  |  Scoring %d+: %d\n", st.UniqueDomains, minScore, st.Strong)

		if len(lr.Scores) == 0 {
			fmt.Fprintln(w, "  (no link-bearing items)")
			continue
		}
		fmt.Fprintln(w)
		for i, ds := range lr.Scores {
			if i == reportTop {
				fmt.Fprintf(w, "  ... and %d more\n", len(lr.Scores)-reportTop)
				break
			}
			if !verbose {
				fmt.Fprintf(w, "  %-40s +%d\n", ds.Domain, ds.Score)
				continue
			}
			var parts []string
			for j, c := range ds.Contributors {
				if j == 4 {
					break
				}
				parts = append(parts, fmt.Sprintf("%s x%d", c.Curator, c.Weight))
			}
			fmt.Fprintf(w, "  %-40s +%-5d (%s)\n", ds.Domain, ds.Score, strings.Join(parts, ", "))
		}
	}
}
