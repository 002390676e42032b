// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package priority

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/curator/internal/errs"
	"github.com/pdiddy/curator/pkg/types"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "priorities.json"))
	s.Now = func() time.Time { return t0 }
	return s
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	s := newStore(t)

	p1, err := s.Add("Tariffs", []string{"tariff", " trade war "}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "p_001", p1.ID)
	assert.Equal(t, DefaultBoost, p1.Boost)
	assert.Equal(t, []string{"tariff", "trade war"}, p1.Keywords)
	assert.True(t, p1.Active)
	assert.Nil(t, p1.ExpiresAt)
	assert.Equal(t, t0, p1.CreatedAt)

	p2, err := s.Add("Fed", []string{"fomc"}, 1.5, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "p_002", p2.ID)
	require.NotNil(t, p2.ExpiresAt)
	assert.Equal(t, t0.Add(48*time.Hour), *p2.ExpiresAt)

	all, err := s.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddIDFollowsHighest(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path, []byte(`{"version":1,"priorities":[{"id":"p_007","label":"x","keywords":["x"],"active":false}]}`), 0o644))

	p, err := s.Add("Next", []string{"y"}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "p_008", p.ID)
}

func TestAddValidation(t *testing.T) {
	s := newStore(t)
	_, err := s.Add(" ", []string{"x"}, 1, 0)
	assert.Error(t, err)
	_, err = s.Add("Label", []string{" ", ""}, 1, 0)
	assert.Error(t, err)

	_, err = os.Stat(s.Path)
	assert.True(t, os.IsNotExist(err), "failed adds must not create the document")
}

func TestActiveAndExpireDue(t *testing.T) {
	s := newStore(t)
	_, err := s.Add("Short", []string{"a"}, 1, time.Hour)
	require.NoError(t, err)
	_, err = s.Add("Forever", []string{"b"}, 1, 0)
	require.NoError(t, err)

	later := t0.Add(2 * time.Hour)
	active, err := s.Active(later)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Forever", active[0].Label)

	expired, err := s.ExpireDue(later)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "p_001", expired[0].ID)
	assert.False(t, expired[0].Active)

	again, err := s.ExpireDue(later)
	require.NoError(t, err)
	assert.Empty(t, again)

	all, err := s.List()
	require.NoError(t, err)
	assert.False(t, all[0].Active)
	assert.True(t, all[1].Active)
}

func TestDueLeavesDocumentUntouched(t *testing.T) {
	s := newStore(t)
	_, err := s.Add("Short", []string{"a"}, 1, time.Hour)
	require.NoError(t, err)
	before, err := os.ReadFile(s.Path)
	require.NoError(t, err)

	due, err := s.Due(t0.Add(2 * time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "p_001", due[0].ID)

	after, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeactivateAndRecordMatches(t *testing.T) {
	s := newStore(t)
	_, err := s.Add("A", []string{"a"}, 1, 0)
	require.NoError(t, err)
	_, err = s.Add("B", []string{"b"}, 1, 0)
	require.NoError(t, err)

	require.NoError(t, s.RecordMatches(map[string]int{"p_001": 3, "p_002": 1}))
	require.NoError(t, s.RecordMatches(map[string]int{"p_001": 2}))

	p, err := s.Deactivate("p_002")
	require.NoError(t, err)
	assert.False(t, p.Active)
	assert.Equal(t, 1, p.MatchCount)

	all, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, 5, all[0].MatchCount)

	_, err = s.Deactivate("p_999")
	assert.Error(t, err)
}

func TestCorruptDocument(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path, []byte("{nope"), 0o644))
	_, err := s.List()
	var pc *errs.PersistenceCorruption
	assert.True(t, errors.As(err, &pc))
}

func TestInterests(t *testing.T) {
	in := NewInterests(filepath.Join(t.TempDir(), "interests.yaml"))
	a := types.Article{Title: "Fed minutes", Link: "https://example.com/fed", Source: "FT", Category: types.CategoryMonetary}

	deep, err := in.Flag(types.InterestDeepDive, a, "follow up", t0)
	require.NoError(t, err)
	assert.Equal(t, 50, deep.Modifier)
	require.NotNil(t, deep.ExpiresAt)
	assert.Equal(t, t0.AddDate(0, 0, 3), *deep.ExpiresAt)

	backlog, err := in.Flag(types.InterestBacklog, types.Article{Title: "Chips"}, "", t0)
	require.NoError(t, err)
	assert.Nil(t, backlog.ExpiresAt)
	assert.Equal(t, types.CategoryOther, backlog.Category)

	_, err = in.Flag(types.InterestMute, a, "", t0)
	require.NoError(t, err)

	byCat, err := in.ActiveByCategory(t0.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, byCat[types.CategoryMonetary], 2)
	assert.Len(t, byCat[types.CategoryOther], 1)

	// After four days the deep dive lapses; mute (7 days) and backlog remain.
	active, err := in.Active(t0.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = in.Flag("LOUD", a, "", t0)
	assert.Error(t, err)
}
