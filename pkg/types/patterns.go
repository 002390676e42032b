// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// LearnedPatterns is the accumulated preference model. Every map holds
// integer weights that only move by feedback or enrichment increments.
type LearnedPatterns struct {
	PreferredSources      map[string]int `json:"preferred_sources"`
	PreferredThemes       map[string]int `json:"preferred_themes"`
	PreferredContentTypes map[string]int `json:"preferred_content_types"`
	AvoidPatterns         map[string]int `json:"avoid_patterns"`

	// DomainSignals is keyed by knowledge-domain label, then content domain.
	DomainSignals map[string]map[string]int `json:"domain_signals"`

	SampleSize  int        `json:"sample_size"`
	LastUpdated *time.Time `json:"last_updated"`
}

// NewLearnedPatterns returns an empty pattern set with all maps allocated.
func NewLearnedPatterns() LearnedPatterns {
	var p LearnedPatterns
	p.Ensure()
	return p
}

// Ensure allocates any nil maps, for documents written by older versions.
func (p *LearnedPatterns) Ensure() {
	if p.PreferredSources == nil {
		p.PreferredSources = map[string]int{}
	}
	if p.PreferredThemes == nil {
		p.PreferredThemes = map[string]int{}
	}
	if p.PreferredContentTypes == nil {
		p.PreferredContentTypes = map[string]int{}
	}
	if p.AvoidPatterns == nil {
		p.AvoidPatterns = map[string]int{}
	}
	if p.DomainSignals == nil {
		p.DomainSignals = map[string]map[string]int{}
	}
}

// FeedbackDay holds one calendar day of feedback, split by action.
type FeedbackDay struct {
	Liked    []FeedbackEvent `json:"liked"`
	Disliked []FeedbackEvent `json:"disliked"`
	Saved    []FeedbackEvent `json:"saved"`
}

// Append files an event under the list for its action.
func (d *FeedbackDay) Append(ev FeedbackEvent) {
	switch ev.Action {
	case ActionLike:
		d.Liked = append(d.Liked, ev)
	case ActionDislike:
		d.Disliked = append(d.Disliked, ev)
	case ActionSave:
		d.Saved = append(d.Saved, ev)
	}
}

// Len returns the number of events recorded that day.
func (d *FeedbackDay) Len() int {
	return len(d.Liked) + len(d.Disliked) + len(d.Saved)
}

// CurationSettings are user-tunable selection knobs stored with preferences.
type CurationSettings struct {
	SerendipityReserve float64 `json:"serendipity_reserve"`
}

// DefaultSerendipityReserve is the share of a briefing picked without
// personalization.
const DefaultSerendipityReserve = 0.20

// Preferences is the whole preferences document.
type Preferences struct {
	Version string `json:"version"`

	// Revision increments on every save and guards against lost updates.
	Revision int `json:"revision"`

	// FeedbackHistory is keyed by YYYY-MM-DD.
	FeedbackHistory  map[string]*FeedbackDay `json:"feedback_history"`
	LearnedPatterns  LearnedPatterns         `json:"learned_patterns"`
	CurationSettings CurationSettings        `json:"curation_settings"`

	// EnrichCache lists bookmark item IDs already merged, per domain label.
	EnrichCache map[string][]string `json:"enrich_cache,omitempty"`
}

// NewPreferences returns an empty document.
func NewPreferences() *Preferences {
	return &Preferences{
		Version:          "1.0",
		FeedbackHistory:  map[string]*FeedbackDay{},
		LearnedPatterns:  NewLearnedPatterns(),
		CurationSettings: CurationSettings{SerendipityReserve: DefaultSerendipityReserve},
		EnrichCache:      map[string][]string{},
	}
}

// Ensure fills defaults into a decoded document.
func (p *Preferences) Ensure() {
	if p.Version == "" {
		p.Version = "1.0"
	}
	if p.FeedbackHistory == nil {
		p.FeedbackHistory = map[string]*FeedbackDay{}
	}
	if p.EnrichCache == nil {
		p.EnrichCache = map[string][]string{}
	}
	p.LearnedPatterns.Ensure()
}

// Day returns the feedback bucket for date, creating it if needed.
func (p *Preferences) Day(date string) *FeedbackDay {
	d, ok := p.FeedbackHistory[date]
	if !ok || d == nil {
		d = &FeedbackDay{Liked: []FeedbackEvent{}, Disliked: []FeedbackEvent{}, Saved: []FeedbackEvent{}}
		p.FeedbackHistory[date] = d
	}
	return d
}
