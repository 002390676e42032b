// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selector

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/curator/pkg/types"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func art(title, source string, cat types.Category, raw float64) types.Article {
	return types.Article{ID: title, Title: title, Source: source, Category: cat, RawScore: raw}
}

func titles(as []types.Article) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Title
	}
	return out
}

func TestPenalties(t *testing.T) {
	assert.InDelta(t, 54.0, SourcePenalty(2, 0.3), 1e-9)
	assert.InDelta(t, 27.0, CategoryPenalty(2, 0.3), 1e-9)
	assert.Zero(t, SourcePenalty(0, 0.3))

	for n := 0; n < 10; n++ {
		assert.LessOrEqual(t, SourcePenalty(n, 0.3), SourcePenalty(n+1, 0.3))
		assert.LessOrEqual(t, CategoryPenalty(n, 0.3), CategoryPenalty(n+1, 0.3))
	}
}

func TestPersonalizedQuota(t *testing.T) {
	tests := []struct {
		topN    int
		reserve float64
		want    int
	}{
		{20, 0.20, 16},
		{10, 0.20, 8},
		{7, 0.20, 6},
		{20, 0, 20},
		{20, 1, 0},
		{20, 1.5, 0},
		{0, 0.2, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%.2f", tt.topN, tt.reserve), func(t *testing.T) {
			assert.Equal(t, tt.want, PersonalizedQuota(tt.topN, tt.reserve))
		})
	}
}

func TestSelectPhaseCounts(t *testing.T) {
	var pool []types.Article
	for i := 0; i < 30; i++ {
		pool = append(pool, art(fmt.Sprintf("a%02d", i), fmt.Sprintf("src%d", i%6), types.Categories[i%6], float64(i%10)))
	}

	res := Select(pool, Options{TopN: 20, DiversityWeight: 0.3, SerendipityReserve: 0.20, Now: now})
	assert.Len(t, res.Selected, 20)
	assert.Equal(t, 16, res.PersonalizedCount)
	assert.Equal(t, 4, res.SerendipityCount)

	for i, a := range res.Selected {
		assert.Equal(t, i >= 16, a.SerendipityPick, a.Title)
	}

	seen := make(map[string]bool)
	for _, a := range res.Selected {
		assert.False(t, seen[a.ID], "duplicate pick %s", a.ID)
		seen[a.ID] = true
	}
}

func TestSelectSmallPool(t *testing.T) {
	pool := []types.Article{art("a", "s", types.CategoryOther, 5), art("b", "s", types.CategoryOther, 4)}
	res := Select(pool, Options{TopN: 20, DiversityWeight: 0.3, SerendipityReserve: 0.2, Now: now})
	assert.Len(t, res.Selected, 2)
	assert.Equal(t, 2, res.PersonalizedCount)
	assert.Zero(t, res.SerendipityCount)
}

func TestSelectDiversityPenalty(t *testing.T) {
	// Two strong articles from one source and a weaker one from another:
	// after the first pick the second same-source article pays 9 points
	// (1 * 30 * 0.3), more than the gap to the other source.
	pool := []types.Article{
		art("r1", "Reuters", types.CategoryFiscal, 9),
		art("r2", "Reuters", types.CategoryMonetary, 8.5),
		art("b1", "Bloomberg", types.CategoryTechnology, 6),
	}
	res := Select(pool, Options{TopN: 3, DiversityWeight: 0.3, Now: now})
	assert.Equal(t, []string{"r1", "b1", "r2"}, titles(res.Selected))
	assert.InDelta(t, 8.5-9, res.Selected[2].FinalScore, 1e-9)

	res = Select(pool, Options{TopN: 3, DiversityWeight: 0, Now: now})
	assert.Equal(t, []string{"r1", "r2", "b1"}, titles(res.Selected))
}

func TestSelectTieKeepsEncounterOrder(t *testing.T) {
	pool := []types.Article{
		art("first", "a", types.CategoryOther, 5),
		art("second", "b", types.CategoryFiscal, 5),
		art("third", "c", types.CategoryMonetary, 5),
	}
	res := Select(pool, Options{TopN: 3, DiversityWeight: 0.3, Now: now})
	assert.Equal(t, []string{"first", "second", "third"}, titles(res.Selected))
}

func TestPriorityBoostCap(t *testing.T) {
	exp := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)
	priorities := []types.Priority{
		{ID: "p_001", Keywords: []string{"tariff"}, Boost: 2, Active: true},
		{ID: "p_002", Keywords: []string{"CHINA"}, Boost: 2, Active: true, ExpiresAt: &exp},
		{ID: "p_003", Keywords: []string{"china"}, Boost: 5, Active: true, ExpiresAt: &past},
		{ID: "p_004", Keywords: []string{"china"}, Boost: 5, Active: false},
	}
	a := types.Article{Title: "China tariff escalation"}

	boost, ids := PriorityBoost(a, priorities, now)
	assert.Equal(t, MaxPriorityBoost, boost)
	assert.Equal(t, []string{"p_001", "p_002"}, ids)

	boost, ids = PriorityBoost(types.Article{Title: "unrelated"}, priorities, now)
	assert.Zero(t, boost)
	assert.Empty(t, ids)
}

func TestInterestBoost(t *testing.T) {
	soon := now.Add(time.Hour)
	gone := now.Add(-time.Hour)
	interests := []types.Interest{
		{Category: types.CategoryFiscal, Modifier: 50, ExpiresAt: &soon},
		{Category: types.CategoryFiscal, Modifier: 10},
		{Category: types.CategoryFiscal, Modifier: 30, ExpiresAt: &gone},
		{Category: types.CategoryMonetary, Modifier: -20, ExpiresAt: &soon},
	}
	assert.Equal(t, 60.0, InterestBoost(types.Article{Category: types.CategoryFiscal}, interests, now))
	assert.Equal(t, -20.0, InterestBoost(types.Article{Category: types.CategoryMonetary}, interests, now))
	assert.Zero(t, InterestBoost(types.Article{Category: types.CategoryOther}, interests, now))
}

func TestSerendipityPhaseIgnoresBoosts(t *testing.T) {
	pool := []types.Article{
		art("boosted", "a", types.CategoryFiscal, 1),
		art("plain-high", "b", types.CategoryOther, 7),
		art("plain-low", "c", types.CategoryMonetary, 6),
		art("keyword", "d", types.CategoryTechnology, 2),
	}
	opts := Options{
		TopN:               2,
		DiversityWeight:    0.3,
		SerendipityReserve: 0.5,
		Interests:          []types.Interest{{Category: types.CategoryFiscal, Modifier: 50}},
		Priorities:         []types.Priority{{ID: "p_001", Keywords: []string{"keyword"}, Boost: 3, Active: true}},
		Now:                now,
	}

	res := Select(pool, opts)
	require.Len(t, res.Selected, 2)

	first := res.Selected[0]
	assert.Equal(t, "boosted", first.Title)
	assert.True(t, first.InterestBoosted)
	assert.InDelta(t, 51, first.FinalScore, 1e-9)

	// Without boosts the priority-matched article (2) loses to plain-high (7).
	second := res.Selected[1]
	assert.Equal(t, "plain-high", second.Title)
	assert.True(t, second.SerendipityPick)
	assert.False(t, second.PrioritiesBoosted)
	assert.Empty(t, res.PriorityMatches)
}

func TestSelectRecordsPriorityMatches(t *testing.T) {
	pool := []types.Article{art("gold rush", "a", types.CategoryMonetary, 4), art("other", "b", types.CategoryOther, 5)}
	opts := Options{
		TopN:       1,
		Priorities: []types.Priority{{ID: "p_007", Keywords: []string{"gold"}, Boost: 2, Active: true}},
		Now:        now,
	}
	res := Select(pool, opts)
	require.Len(t, res.Selected, 1)
	assert.Equal(t, "gold rush", res.Selected[0].Title)
	assert.True(t, res.Selected[0].PrioritiesBoosted)
	assert.Equal(t, []string{"p_007"}, res.Selected[0].MatchedPriorities)
	assert.Equal(t, map[string]int{"p_007": 1}, res.PriorityMatches)
}

func TestSelectDoesNotMutatePool(t *testing.T) {
	pool := []types.Article{art("a", "s", types.CategoryOther, 5)}
	Select(pool, Options{TopN: 1, Now: now})
	assert.Zero(t, pool[0].FinalScore)
}
