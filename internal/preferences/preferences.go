// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preferences persists the preferences document: feedback history,
// learned patterns and curation settings.
package preferences

import (
	"errors"
	"fmt"

	"github.com/pdiddy/curator/internal/docstore"
	"github.com/pdiddy/curator/pkg/types"
)

// ErrConflict reports that the document changed on disk after it was
// loaded. The caller should reload and reapply its change.
var ErrConflict = errors.New("preferences changed on disk since they were loaded")

// Store reads and writes one preferences file.
type Store struct {
	Path string
}

// NewStore returns a Store for path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load returns the document, or a fresh one when the file does not exist.
// Unreadable JSON is errs.PersistenceCorruption.
func (s *Store) Load() (*types.Preferences, error) {
	// Decoding over defaults keeps settings absent from older documents.
	p := types.NewPreferences()
	if _, err := docstore.ReadJSON(s.Path, p); err != nil {
		return nil, err
	}
	p.Ensure()
	return p, nil
}

// Save writes p if the on-disk revision still equals p.Revision, then
// increments p.Revision. The check narrows but does not close the window
// between two concurrent writers; there is no file lock.
func (s *Store) Save(p *types.Preferences) error {
	var onDisk struct {
		Revision int `json:"revision"`
	}
	if _, err := docstore.ReadJSON(s.Path, &onDisk); err != nil {
		return err
	}
	if onDisk.Revision != p.Revision {
		return fmt.Errorf("%s: revision %d on disk, %d loaded: %w", s.Path, onDisk.Revision, p.Revision, ErrConflict)
	}

	p.Revision++
	if err := docstore.WriteJSON(s.Path, p); err != nil {
		p.Revision--
		return err
	}
	return nil
}

// Update loads the document, applies fn and saves the result.
func (s *Store) Update(fn func(*types.Preferences) error) (*types.Preferences, error) {
	p, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}
