package index_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stash/pkg/filesystem"
	"github.com/arthur-debert/stash/pkg/index"
	"github.com/arthur-debert/stash/pkg/types"
)

func newStore(t *testing.T) (*index.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.json")
	return index.New(filesystem.NewOS(), path), path
}

func meta(name string, size uint64, created time.Time) types.EntryMetadata {
	return types.EntryMetadata{
		UUID:           uuid.New(),
		Name:           name,
		Created:        created,
		TotalSizeBytes: size,
		ItemCount:      1,
	}
}

func TestAddAndFind(t *testing.T) {
	store, _ := newStore(t)

	m := meta("work", 100, time.Now().UTC())
	require.NoError(t, store.Add(m))

	found, ok := store.Find(m.UUID)
	require.True(t, ok)
	assert.Equal(t, m.Name, found.Name)
	assert.Equal(t, 1, store.Count())
	assert.Equal(t, uint64(100), store.TotalSize())
}

func TestAddPersistsSynchronously(t *testing.T) {
	store, path := newStore(t)
	m := meta("durable", 42, time.Now().UTC())
	require.NoError(t, store.Add(m))

	// A fresh store over the same document sees the entry.
	reloaded := index.New(filesystem.NewOS(), path)
	_, ok := reloaded.Find(m.UUID)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), reloaded.TotalSize())
}

func TestRemoveKeepsTotalConsistent(t *testing.T) {
	store, _ := newStore(t)

	a := meta("a", 100, time.Now().UTC())
	b := meta("b", 50, time.Now().UTC())
	require.NoError(t, store.Add(a))
	require.NoError(t, store.Add(b))

	removed, ok, err := store.Remove(a.UUID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, a.UUID, removed.UUID)
	assert.Equal(t, uint64(50), store.TotalSize(), "total must equal the sum of remaining entries")

	_, ok, err = store.Remove(uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindByNameAndIdentifier(t *testing.T) {
	store, _ := newStore(t)

	m := meta("report.pdf", 10, time.Now().UTC())
	require.NoError(t, store.Add(m))
	require.NoError(t, store.Add(meta("", 5, time.Now().UTC())))

	byName, ok := store.FindByName("report.pdf")
	require.True(t, ok)
	assert.Equal(t, m.UUID, byName.UUID)

	_, ok = store.FindByName("")
	assert.False(t, ok, "empty name must never match")

	byID, ok := store.FindByIdentifier(m.UUID.String())
	require.True(t, ok)
	assert.Equal(t, m.UUID, byID.UUID)

	byIdent, ok := store.FindByIdentifier("report.pdf")
	require.True(t, ok)
	assert.Equal(t, m.UUID, byIdent.UUID)

	_, ok = store.FindByIdentifier("nothing")
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	store, _ := newStore(t)

	a := meta("Quarterly Report", 1, time.Now().UTC())
	b := meta("notes", 1, time.Now().UTC())
	c := meta("", 1, time.Now().UTC())
	require.NoError(t, store.Add(a))
	require.NoError(t, store.Add(b))
	require.NoError(t, store.Add(c))

	matches := store.Search("report")
	require.Len(t, matches, 1)
	assert.Equal(t, a.UUID, matches[0].UUID)

	// UUID prefixes match too.
	matches = store.Search(b.UUID.String()[:6])
	require.Len(t, matches, 1)
	assert.Equal(t, b.UUID, matches[0].UUID)

	assert.Empty(t, store.Search("zzz"))
}

func TestRemoveOlderThan(t *testing.T) {
	store, _ := newStore(t)

	old := meta("old", 100, time.Now().UTC().AddDate(0, 0, -40))
	recent := meta("recent", 30, time.Now().UTC().AddDate(0, 0, -5))
	require.NoError(t, store.Add(old))
	require.NoError(t, store.Add(recent))

	removed, err := store.RemoveOlderThan(30)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, old.UUID, removed[0])

	assert.Equal(t, 1, store.Count())
	assert.Equal(t, uint64(30), store.TotalSize(), "total recomputed from survivors")

	// No matches: no mutation, nil result.
	removed, err = store.RemoveOlderThan(30)
	require.NoError(t, err)
	assert.Empty(t, removed)
}

func TestSortedViews(t *testing.T) {
	store, _ := newStore(t)

	now := time.Now().UTC()
	oldest := meta("zeta", 5, now.Add(-3*time.Hour))
	middle := meta("", 50, now.Add(-2*time.Hour))
	newest := meta("alpha", 20, now.Add(-time.Hour))
	require.NoError(t, store.Add(oldest))
	require.NoError(t, store.Add(middle))
	require.NoError(t, store.Add(newest))

	byDate := store.ByDate()
	assert.Equal(t, []uuid.UUID{newest.UUID, middle.UUID, oldest.UUID},
		[]uuid.UUID{byDate[0].UUID, byDate[1].UUID, byDate[2].UUID})

	bySize := store.BySize()
	assert.Equal(t, middle.UUID, bySize[0].UUID)
	assert.Equal(t, newest.UUID, bySize[1].UUID)

	byName := store.ByName()
	assert.Equal(t, "alpha", byName[0].Name)
	assert.Equal(t, "zeta", byName[1].Name)
	assert.Equal(t, middle.UUID, byName[2].UUID, "unnamed entries sort after named ones")
}

func TestByNameTieKeepsInsertionOrder(t *testing.T) {
	store, _ := newStore(t)

	first := meta("same", 1, time.Now().UTC())
	second := meta("same", 2, time.Now().UTC())
	require.NoError(t, store.Add(first))
	require.NoError(t, store.Add(second))

	byName := store.ByName()
	assert.Equal(t, first.UUID, byName[0].UUID)
	assert.Equal(t, second.UUID, byName[1].UUID)
}

func TestMostRecent(t *testing.T) {
	store, _ := newStore(t)

	_, ok := store.MostRecent()
	assert.False(t, ok)

	a := meta("first", 1, time.Now().UTC())
	b := meta("second", 1, time.Now().UTC())
	require.NoError(t, store.Add(a))
	require.NoError(t, store.Add(b))

	recent, ok := store.MostRecent()
	require.True(t, ok)
	assert.Equal(t, b.UUID, recent.UUID)
}

func TestUpdateEntryName(t *testing.T) {
	store, path := newStore(t)

	m := meta("before", 1, time.Now().UTC())
	require.NoError(t, store.Add(m))
	require.NoError(t, store.UpdateEntryName(m.UUID, "after"))

	reloaded := index.New(filesystem.NewOS(), path)
	found, ok := reloaded.Find(m.UUID)
	require.True(t, ok)
	assert.Equal(t, "after", found.Name)

	assert.Error(t, store.UpdateEntryName(uuid.New(), "nope"))
}

func TestCorruptIndexDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	store := index.New(filesystem.NewOS(), path)
	assert.True(t, store.IsEmpty())
	assert.Equal(t, uint64(0), store.TotalSize())
}

func TestClear(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Add(meta("x", 9, time.Now().UTC())))

	require.NoError(t, store.Clear())
	assert.True(t, store.IsEmpty())
	assert.Equal(t, uint64(0), store.TotalSize())
}
