// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package priority

import (
	"errors"
	"time"

	"github.com/pdiddy/curator/internal/docstore"
	"github.com/pdiddy/curator/pkg/types"
)

type interestDocument struct {
	Interests []types.Interest `yaml:"interests"`
}

// Interests reads and writes the flagged-interest YAML document.
type Interests struct {
	Path string
}

// NewInterests returns an Interests store for path.
func NewInterests(path string) *Interests {
	return &Interests{Path: path}
}

// All returns every recorded interest, expired or not.
func (s *Interests) All() ([]types.Interest, error) {
	var doc interestDocument
	if _, err := docstore.ReadYAML(s.Path, &doc); err != nil {
		return nil, err
	}
	return doc.Interests, nil
}

// Flag records a new interest for a, with the level's modifier and
// lifetime.
func (s *Interests) Flag(level types.InterestLevel, a types.Article, reason string, now time.Time) (types.Interest, error) {
	policy, ok := types.InterestPolicies[level]
	if !ok {
		return types.Interest{}, errors.New("unknown interest level " + string(level))
	}
	if a.Category == "" {
		a.Category = types.CategoryOther
	}

	in := types.Interest{
		Level:     level,
		Title:     a.Title,
		URL:       a.Link,
		Source:    a.Source,
		Category:  a.Category,
		Reason:    reason,
		FlaggedAt: now.UTC(),
		Modifier:  policy.Modifier,
	}
	if policy.Days > 0 {
		exp := now.UTC().AddDate(0, 0, policy.Days)
		in.ExpiresAt = &exp
	}

	all, err := s.All()
	if err != nil {
		return types.Interest{}, err
	}
	all = append(all, in)
	return in, docstore.WriteYAML(s.Path, interestDocument{Interests: all})
}

// Active returns the interests that have not expired at now.
func (s *Interests) Active(now time.Time) ([]types.Interest, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	var out []types.Interest
	for _, in := range all {
		if !in.Expired(now) {
			out = append(out, in)
		}
	}
	return out, nil
}

// ActiveByCategory groups the unexpired interests by category.
func (s *Interests) ActiveByCategory(now time.Time) (map[types.Category][]types.Interest, error) {
	active, err := s.Active(now)
	if err != nil {
		return nil, err
	}
	out := make(map[types.Category][]types.Interest)
	for _, in := range active {
		out[in.Category] = append(out[in.Category], in)
	}
	return out, nil
}
