package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/refaudit/internal/audit"
	"github.com/mvp-joe/refaudit/internal/diff"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(identical bool) *audit.RunResult {
	cmp := &diff.ComparisonResult{
		Matching: []diff.MatchEntry{{Name: "function:kept"}},
	}
	if !identical {
		cmp.Removed = []string{"function:gone"}
		cmp.Modified = []diff.ModifiedEntry{{Name: "function:core"}}
	}
	return &audit.RunResult{
		Branch:     "feature/x",
		BaseRef:    "main",
		BaseCommit: "abc123",
		StartedAt:  time.Now().UTC(),
		Duration:   1500 * time.Millisecond,
		Languages: map[string]*audit.LanguageResult{
			"python": {Language: "python", Comparison: cmp},
		},
	}
}

func TestStore_RecordAndList(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	id, err := store.Record(sampleRun(false))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	entries, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, id, e.ID)
	assert.Equal(t, "feature/x", e.Branch)
	assert.Equal(t, "main", e.BaseRef)
	assert.Equal(t, 1, e.Removed)
	assert.Equal(t, 1, e.Modified)
	assert.Equal(t, 1, e.Matching)
	assert.False(t, e.Identical)
	assert.Equal(t, 1500*time.Millisecond, e.Duration)
}

func TestStore_ListNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)

	older := sampleRun(true)
	older.StartedAt = time.Now().UTC().Add(-time.Hour)
	_, err := store.Record(older)
	require.NoError(t, err)

	newerID, err := store.Record(sampleRun(false))
	require.NoError(t, err)

	entries, err := store.List(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newerID, entries[0].ID)
	assert.True(t, entries[1].Identical)
}

func TestStore_ListLimit(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	for i := 0; i < 5; i++ {
		run := sampleRun(true)
		run.StartedAt = time.Now().UTC().Add(time.Duration(i) * time.Minute)
		_, err := store.Record(run)
		require.NoError(t, err)
	}

	entries, err := store.List(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestStore_ReopenKeepsRuns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Record(sampleRun(true))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.List(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
