// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selector turns a scored pool into an ordered briefing list.
//
// Selection is greedy and runs in two phases. The personalized phase fills
// ceil(top_n * (1 - reserve)) slots with the full formula
//
//	final = raw - source_penalty - category_penalty + interest_boost + priority_boost
//
// and the serendipity phase fills the rest from the leftover pool with
// boosts excluded. Penalty counts restart at zero in each phase. Every
// round re-sorts the remaining pool stably, so on an exact tie the article
// that was ahead in the previous round wins.
package selector

import (
	"math"
	"sort"
	"time"

	"github.com/pdiddy/curator/pkg/types"
)

const (
	sourcePenaltyUnit   = 30.0
	categoryPenaltyUnit = 15.0

	// MaxPriorityBoost caps the summed boost of all matching priorities.
	MaxPriorityBoost = 3.0
)

// Options configures one selection.
type Options struct {
	TopN               int
	DiversityWeight    float64
	SerendipityReserve float64
	Priorities         []types.Priority
	Interests          []types.Interest
	Now                time.Time
}

// Result is the ordered selection plus phase counts.
type Result struct {
	Selected          []types.Article
	PersonalizedCount int
	SerendipityCount  int

	// PriorityMatches counts, per priority ID, the personalized picks the
	// priority boosted.
	PriorityMatches map[string]int
}

// SourcePenalty is the deduction for an article whose source already has
// n picks in the current phase.
func SourcePenalty(n int, diversityWeight float64) float64 {
	return float64(n*n) * sourcePenaltyUnit * diversityWeight
}

// CategoryPenalty is the deduction for an article whose category already
// has n picks in the current phase.
func CategoryPenalty(n int, diversityWeight float64) float64 {
	return float64(n*n) * categoryPenaltyUnit * diversityWeight
}

// PersonalizedQuota returns the number of phase-one slots for topN.
func PersonalizedQuota(topN int, reserve float64) int {
	reserve = math.Min(1, math.Max(0, reserve))
	// The epsilon absorbs float error such as 20*(1-0.2) = 16.000000000000004.
	q := int(math.Ceil(float64(topN)*(1-reserve) - 1e-9))
	if q > topN {
		q = topN
	}
	return q
}

// PriorityBoost sums the boosts of active priorities matching the
// article's title and summary, capped at MaxPriorityBoost. It also returns
// the IDs of the matching priorities.
func PriorityBoost(a types.Article, priorities []types.Priority, now time.Time) (float64, []string) {
	text := a.Title + " " + a.Summary
	var (
		total float64
		ids   []string
	)
	for _, p := range priorities {
		if !p.IsActive(now) || !p.Matches(text) {
			continue
		}
		total += p.Boost
		ids = append(ids, p.ID)
	}
	return math.Min(total, MaxPriorityBoost), ids
}

// InterestBoost sums the modifiers of unexpired interests flagged in the
// article's category.
func InterestBoost(a types.Article, interests []types.Interest, now time.Time) float64 {
	var total float64
	for _, in := range interests {
		if in.Category == a.Category && !in.Expired(now) {
			total += float64(in.Modifier)
		}
	}
	return total
}

type candidate struct {
	article  types.Article
	interest float64
	priority float64
	matched  []string
	final    float64
}

// Select picks min(TopN, len(pool)) articles. The pool is not modified.
func Select(pool []types.Article, opts Options) Result {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	remaining := make([]*candidate, len(pool))
	for i, a := range pool {
		c := &candidate{article: a}
		c.interest = InterestBoost(a, opts.Interests, now)
		c.priority, c.matched = PriorityBoost(a, opts.Priorities, now)
		remaining[i] = c
	}

	res := Result{PriorityMatches: make(map[string]int)}
	quota := PersonalizedQuota(opts.TopN, opts.SerendipityReserve)

	var picked []*candidate
	picked, remaining = runPhase(remaining, quota, opts.DiversityWeight, true)
	for _, c := range picked {
		a := c.article
		a.FinalScore = c.final
		a.InterestModifier = c.interest
		a.InterestBoosted = c.interest != 0
		a.PriorityBoost = c.priority
		a.PrioritiesBoosted = c.priority > 0
		a.MatchedPriorities = c.matched
		for _, id := range c.matched {
			res.PriorityMatches[id]++
		}
		res.Selected = append(res.Selected, a)
	}
	res.PersonalizedCount = len(picked)

	rest := opts.TopN - len(picked)
	if rest < 0 {
		rest = 0
	}
	picked, _ = runPhase(remaining, rest, opts.DiversityWeight, false)
	for _, c := range picked {
		a := c.article
		a.FinalScore = c.final
		a.SerendipityPick = true
		res.Selected = append(res.Selected, a)
	}
	res.SerendipityCount = len(picked)

	return res
}

// runPhase greedily picks up to n candidates and returns them with the
// leftover pool in its last sorted order.
func runPhase(remaining []*candidate, n int, dw float64, boosted bool) ([]*candidate, []*candidate) {
	sources := make(map[string]int)
	categories := make(map[types.Category]int)
	var picked []*candidate

	for len(picked) < n && len(remaining) > 0 {
		for _, c := range remaining {
			a := c.article
			c.final = a.RawScore -
				SourcePenalty(sources[a.Source], dw) -
				CategoryPenalty(categories[a.Category], dw)
			if boosted {
				c.final += c.interest + c.priority
			}
		}
		sort.SliceStable(remaining, func(i, j int) bool { return remaining[i].final > remaining[j].final })

		best := remaining[0]
		remaining = remaining[1:]
		picked = append(picked, best)
		sources[best.article.Source]++
		categories[best.article.Category]++
	}
	return picked, remaining
}
