// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feedback

import (
	"time"

	"github.com/pdiddy/curator/pkg/types"
)

// Learn folds one feedback action into p. The action's weight (like +2,
// save +1, dislike -1) is added to every extracted content type and theme
// and to the article's source. A dislike also adds 1 to avoid_patterns for
// each extracted signal.
func Learn(p *types.LearnedPatterns, m types.ExtractedMetadata, action types.Action, now time.Time) {
	p.Ensure()
	w := action.Weight()

	for _, ct := range m.ContentType {
		p.PreferredContentTypes[ct] += w
	}
	for _, th := range m.Themes {
		p.PreferredThemes[th] += w
	}
	if m.Source != "" {
		p.PreferredSources[m.Source] += w
	}
	if action == types.ActionDislike {
		for _, sig := range m.Signals {
			p.AvoidPatterns[sig]++
		}
	}

	t := now
	p.LastUpdated = &t
	p.SampleSize++
}
