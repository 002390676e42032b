// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package priority manages the two user-declared boost documents read at
// selection time: keyword priorities and flagged interests.
package priority

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/curator/internal/docstore"
	"github.com/pdiddy/curator/pkg/types"
)

// DefaultBoost is used when Add is given a non-positive boost.
const DefaultBoost = 2.0

const documentVersion = 1

// Document is the on-disk priorities file.
type Document struct {
	Version    int              `json:"version"`
	Priorities []types.Priority `json:"priorities"`
}

// Store reads and writes the priorities document.
type Store struct {
	Path string

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewStore returns a Store for path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) load() (*Document, error) {
	doc := &Document{Version: documentVersion, Priorities: []types.Priority{}}
	if _, err := docstore.ReadJSON(s.Path, doc); err != nil {
		return nil, err
	}
	if doc.Priorities == nil {
		doc.Priorities = []types.Priority{}
	}
	return doc, nil
}

func (s *Store) save(doc *Document) error {
	doc.Version = documentVersion
	return docstore.WriteJSON(s.Path, doc)
}

// List returns every priority, active or not, in creation order.
func (s *Store) List() ([]types.Priority, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Priorities, nil
}

// Active returns the priorities that apply at now.
func (s *Store) Active(now time.Time) ([]types.Priority, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []types.Priority
	for _, p := range all {
		if p.IsActive(now) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Add creates an active priority. The ID is one more than the highest
// existing p_NNN. A zero expiresIn means it never expires.
func (s *Store) Add(label string, keywords []string, boost float64, expiresIn time.Duration) (types.Priority, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return types.Priority{}, errors.New("priority label is required")
	}
	var kws []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}
	if len(kws) == 0 {
		return types.Priority{}, errors.New("priority needs at least one keyword")
	}
	if boost <= 0 {
		boost = DefaultBoost
	}

	doc, err := s.load()
	if err != nil {
		return types.Priority{}, err
	}

	now := s.now().UTC()
	p := types.Priority{
		ID:        nextID(doc.Priorities),
		Label:     label,
		Keywords:  kws,
		Boost:     boost,
		CreatedAt: now,
		Active:    true,
	}
	if expiresIn > 0 {
		exp := now.Add(expiresIn)
		p.ExpiresAt = &exp
	}

	doc.Priorities = append(doc.Priorities, p)
	if err := s.save(doc); err != nil {
		return types.Priority{}, err
	}
	return p, nil
}

func nextID(ps []types.Priority) string {
	top := 0
	for _, p := range ps {
		n, err := strconv.Atoi(strings.TrimPrefix(p.ID, "p_"))
		if err == nil && strings.HasPrefix(p.ID, "p_") && n > top {
			top = n
		}
	}
	return fmt.Sprintf("p_%03d", top+1)
}

// Due returns the active priorities whose expiry has passed, without
// changing the document.
func (s *Store) Due(now time.Time) ([]types.Priority, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	var due []types.Priority
	for _, p := range doc.Priorities {
		if p.Active && p.Expired(now) {
			due = append(due, p)
		}
	}
	return due, nil
}

// ExpireDue deactivates every active priority whose expiry has passed and
// returns them. Nothing is written when none are due.
func (s *Store) ExpireDue(now time.Time) ([]types.Priority, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	var expired []types.Priority
	for i := range doc.Priorities {
		p := &doc.Priorities[i]
		if p.Active && p.Expired(now) {
			p.Active = false
			expired = append(expired, *p)
		}
	}
	if len(expired) == 0 {
		return nil, nil
	}
	return expired, s.save(doc)
}

// Deactivate turns off one priority by ID.
func (s *Store) Deactivate(id string) (types.Priority, error) {
	doc, err := s.load()
	if err != nil {
		return types.Priority{}, err
	}
	for i := range doc.Priorities {
		if doc.Priorities[i].ID == id {
			doc.Priorities[i].Active = false
			return doc.Priorities[i], s.save(doc)
		}
	}
	return types.Priority{}, fmt.Errorf("no priority with id %q", id)
}

// RecordMatches adds counts[id] to each priority's match_count.
func (s *Store) RecordMatches(counts map[string]int) error {
	if len(counts) == 0 {
		return nil
	}
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i := range doc.Priorities {
		doc.Priorities[i].MatchCount += counts[doc.Priorities[i].ID]
	}
	return s.save(doc)
}
