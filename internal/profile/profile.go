// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile condenses learned patterns into the personalization
// passage injected into model prompts.
package profile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/curator/pkg/types"
)

const (
	// ColdStartSamples is the minimum sample size for a non-empty profile.
	ColdStartSamples = 3

	// DefaultMinWeight is the inclusion threshold for fresh data.
	DefaultMinWeight = 2

	// ExcludedContentType is co-tagged on nearly every article and carries
	// no preference signal.
	ExcludedContentType = "descriptive"

	// DomainSignalMin and DomainSignalCap bound the domain-signal block.
	DomainSignalMin = 2
	DomainSignalCap = 8
)

// Caps on how many entries each block lists.
type caps struct{ pos, neg int }

var (
	sourceCaps  = caps{pos: 5, neg: 3}
	themeCaps   = caps{pos: 5, neg: 3}
	contentCaps = caps{pos: 3, neg: 2}
	avoidCap    = 3
)

// MinWeightFor returns the inclusion threshold for data last updated
// daysStale days ago. The result never falls below def and never
// decreases as daysStale grows.
func MinWeightFor(daysStale, def int) int {
	gate := def
	switch {
	case daysStale > 60:
		gate = 4
	case daysStale > 30:
		gate = 3
	}
	if gate < def {
		gate = def
	}
	return gate
}

// DaysSince returns whole days from t to now, and false when t is unset.
func DaysSince(t *time.Time, now time.Time) (int, bool) {
	if t == nil || t.IsZero() {
		return 0, false
	}
	d := int(now.Sub(*t).Hours() / 24)
	if d < 0 {
		d = 0
	}
	return d, true
}

// Options configures Build.
type Options struct {
	// MinWeight is the threshold for fresh data; zero means DefaultMinWeight.
	MinWeight    int
	ActiveDomain string
	Now          time.Time
}

// Entry is one named weight.
type Entry struct {
	Name   string
	Weight int
}

// Block lists the strongest positive and negative entries of a dimension.
type Block struct {
	Positive []Entry
	Negative []Entry
}

func (b Block) empty() bool { return len(b.Positive) == 0 && len(b.Negative) == 0 }

// Profile is the thresholded view of learned patterns.
type Profile struct {
	SampleSize int
	DaysStale  int
	MinWeight  int

	Sources      Block
	Themes       Block
	ContentTypes Block
	Avoid        []Entry

	Domain        string
	DomainSignals []Entry
}

// Build applies the cold-start floor and decay gate to p. Below
// ColdStartSamples the returned profile is empty.
func Build(p types.LearnedPatterns, opts Options) Profile {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	def := opts.MinWeight
	if def <= 0 {
		def = DefaultMinWeight
	}

	prof := Profile{SampleSize: p.SampleSize, Domain: opts.ActiveDomain, MinWeight: def}
	if p.SampleSize < ColdStartSamples {
		return prof
	}
	if days, ok := DaysSince(p.LastUpdated, now); ok {
		prof.DaysStale = days
		prof.MinWeight = MinWeightFor(days, def)
	}
	gate := prof.MinWeight

	prof.Sources = block(p.PreferredSources, gate, sourceCaps, nil)
	prof.Themes = block(p.PreferredThemes, gate, themeCaps, nil)
	prof.ContentTypes = block(p.PreferredContentTypes, gate, contentCaps, map[string]bool{ExcludedContentType: true})

	avoid := ranked(p.AvoidPatterns, func(w int) bool { return w >= gate })
	prof.Avoid = head(avoid, avoidCap)

	if opts.ActiveDomain != "" {
		sig := ranked(p.DomainSignals[opts.ActiveDomain], func(w int) bool { return w >= DomainSignalMin })
		prof.DomainSignals = head(sig, DomainSignalCap)
	}
	return prof
}

// Empty reports whether the profile carries no signal.
func (p Profile) Empty() bool {
	return p.Sources.empty() && p.Themes.empty() && p.ContentTypes.empty() &&
		len(p.Avoid) == 0 && len(p.DomainSignals) == 0
}

// Text renders the passage injected into scoring prompts. An empty profile
// renders as the empty string.
func (p Profile) Text() string {
	if p.Empty() {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Reader profile learned from %d feedback signals", p.SampleSize)
	if p.MinWeight > DefaultMinWeight {
		fmt.Fprintf(&sb, " (data %d days old, only strong signals shown)", p.DaysStale)
	}
	sb.WriteString(":\n")

	line(&sb, "Preferred sources", p.Sources.Positive, signed)
	line(&sb, "Deprioritized sources", p.Sources.Negative, signed)
	line(&sb, "Preferred themes", p.Themes.Positive, signed)
	line(&sb, "Unwanted themes", p.Themes.Negative, signed)
	line(&sb, "Preferred content style", p.ContentTypes.Positive, signed)
	line(&sb, "Disliked content style", p.ContentTypes.Negative, signed)
	line(&sb, "Avoid", p.Avoid, times)
	if len(p.DomainSignals) > 0 {
		line(&sb, "Trusted domains for "+p.Domain, p.DomainSignals, plain)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func signed(e Entry) string { return fmt.Sprintf("%s (%+d)", e.Name, e.Weight) }
func times(e Entry) string  { return fmt.Sprintf("%s (%dx)", e.Name, e.Weight) }
func plain(e Entry) string  { return fmt.Sprintf("%s (%d)", e.Name, e.Weight) }

func line(sb *strings.Builder, label string, entries []Entry, format func(Entry) string) {
	if len(entries) == 0 {
		return
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = format(e)
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, strings.Join(parts, ", "))
}

func block(m map[string]int, gate int, c caps, exclude map[string]bool) Block {
	pos := ranked(m, func(w int) bool { return w >= gate })
	neg := ranked(m, func(w int) bool { return w <= -gate })
	pos = dropNames(pos, exclude)
	neg = dropNames(neg, exclude)

	// Negatives strongest first.
	sort.SliceStable(neg, func(i, j int) bool { return neg[i].Weight < neg[j].Weight })
	return Block{Positive: head(pos, c.pos), Negative: head(neg, c.neg)}
}

// ranked returns the entries passing keep, by weight descending then name.
func ranked(m map[string]int, keep func(int) bool) []Entry {
	var out []Entry
	for name, w := range m {
		if keep(w) {
			out = append(out, Entry{Name: name, Weight: w})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func dropNames(es []Entry, exclude map[string]bool) []Entry {
	if len(exclude) == 0 {
		return es
	}
	out := es[:0]
	for _, e := range es {
		if !exclude[e.Name] {
			out = append(out, e)
		}
	}
	return out
}

func head(es []Entry, n int) []Entry {
	if len(es) > n {
		return es[:n]
	}
	return es
}
