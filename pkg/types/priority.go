// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// Priority is a short-lived, user-declared keyword boost.
type Priority struct {
	ID        string     `json:"id" yaml:"id"`
	Label     string     `json:"label" yaml:"label"`
	Keywords  []string   `json:"keywords" yaml:"keywords"`
	Boost     float64    `json:"boost" yaml:"boost"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	ExpiresAt *time.Time `json:"expires_at" yaml:"expires_at"`
	Active    bool       `json:"active" yaml:"active"`

	MatchCount int `json:"match_count" yaml:"match_count"`
}

// Expired reports whether the priority has an expiry at or before now.
func (p Priority) Expired(now time.Time) bool {
	return p.ExpiresAt != nil && !p.ExpiresAt.After(now)
}

// IsActive reports whether the priority applies at now.
func (p Priority) IsActive(now time.Time) bool {
	return p.Active && !p.Expired(now)
}

// Matches reports whether any keyword occurs in text, case-insensitively.
func (p Priority) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range p.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// InterestLevel is the flag a user puts on an article of interest.
type InterestLevel string

const (
	InterestDeepDive InterestLevel = "DEEP-DIVE"
	InterestThisWeek InterestLevel = "THIS-WEEK"
	InterestBacklog  InterestLevel = "BACKLOG"
	InterestMute     InterestLevel = "MUTE"
)

// InterestPolicy is the score modifier and lifetime for a level. Days of
// zero means no expiry.
type InterestPolicy struct {
	Modifier int
	Days     int
}

// InterestPolicies maps each level to its modifier and lifetime.
var InterestPolicies = map[InterestLevel]InterestPolicy{
	InterestDeepDive: {Modifier: 50, Days: 3},
	InterestThisWeek: {Modifier: 30, Days: 7},
	InterestBacklog:  {Modifier: 10, Days: 0},
	InterestMute:     {Modifier: -20, Days: 7},
}

// ParseInterestLevel validates a level name, ignoring case.
func ParseInterestLevel(s string) (InterestLevel, error) {
	l := InterestLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := InterestPolicies[l]; !ok {
		return "", fmt.Errorf("unknown interest level %q: use DEEP-DIVE, THIS-WEEK, BACKLOG or MUTE", s)
	}
	return l, nil
}

// Interest is a flagged-article record whose modifier applies to every
// candidate in the same category until it expires.
type Interest struct {
	Level     InterestLevel `json:"level" yaml:"level"`
	Title     string        `json:"title" yaml:"title"`
	URL       string        `json:"url" yaml:"url"`
	Source    string        `json:"source" yaml:"source"`
	Category  Category      `json:"category" yaml:"category"`
	Reason    string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	FlaggedAt time.Time     `json:"flagged_at" yaml:"flagged_at"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Modifier  int           `json:"modifier" yaml:"modifier"`
}

// Expired reports whether the interest lapsed before now.
func (i Interest) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}
