package journal_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stash/pkg/filesystem"
	"github.com/arthur-debert/stash/pkg/journal"
	"github.com/arthur-debert/stash/pkg/types"
)

func newJournal(t *testing.T) (*journal.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.json")
	return journal.New(filesystem.NewOS(), path), path
}

func TestAppendAndLast(t *testing.T) {
	j, _ := newJournal(t)

	_, ok := j.Last()
	assert.False(t, ok)

	first := types.NewOperation(types.PushKind{EntryID: uuid.New(), FileCount: 2})
	second := types.NewOperation(types.PopKind{EntryID: uuid.New(), Destination: "/tmp"})
	require.NoError(t, j.Append(first))
	require.NoError(t, j.Append(second))

	last, ok := j.Last()
	require.True(t, ok)
	assert.Equal(t, second.ID, last.ID)
	assert.Equal(t, 2, j.Count())
}

func TestAppendPersistsAcrossReopen(t *testing.T) {
	j, path := newJournal(t)

	op := types.NewOperation(types.CleanKind{RemovedCount: 3, Days: 30})
	require.NoError(t, j.Append(op))

	reloaded := journal.New(filesystem.NewOS(), path)
	require.Equal(t, 1, reloaded.Count())
	last, ok := reloaded.Last()
	require.True(t, ok)
	assert.Equal(t, op.ID, last.ID)
	assert.IsType(t, types.CleanKind{}, last.Kind)
}

func TestForEntry(t *testing.T) {
	j, _ := newJournal(t)

	target := uuid.New()
	other := uuid.New()
	require.NoError(t, j.Append(types.NewOperation(types.PushKind{EntryID: target, FileCount: 1})))
	require.NoError(t, j.Append(types.NewOperation(types.PushKind{EntryID: other, FileCount: 1})))
	require.NoError(t, j.Append(types.NewOperation(types.PopKind{EntryID: target, Destination: "/home"})))
	require.NoError(t, j.Append(types.NewOperation(types.DumpKind{EntryCount: 2})))

	history := j.ForEntry(target)
	require.Len(t, history, 2)
	assert.Equal(t, types.OpTypePush, history[0].Kind.Type())
	assert.Equal(t, types.OpTypePop, history[1].Kind.Type())
}

func TestSince(t *testing.T) {
	j, _ := newJournal(t)

	old := types.NewOperation(types.PushKind{EntryID: uuid.New(), FileCount: 1})
	old.Timestamp = time.Now().UTC().Add(-2 * time.Hour)
	require.NoError(t, j.Append(old))
	require.NoError(t, j.Append(types.NewOperation(types.DumpKind{EntryCount: 1})))

	recent := j.Since(time.Now().UTC().Add(-time.Hour))
	require.Len(t, recent, 1)
	assert.Equal(t, types.OpTypeDump, recent[0].Kind.Type())
}

func TestRecent(t *testing.T) {
	j, _ := newJournal(t)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		op := types.NewOperation(types.CleanKind{RemovedCount: i})
		ids = append(ids, op.ID)
		require.NoError(t, j.Append(op))
	}

	got := j.Recent(3)
	require.Len(t, got, 3)
	assert.Equal(t, ids[2], got[0].ID, "append order, oldest of the window first")
	assert.Equal(t, ids[4], got[2].ID)

	assert.Len(t, j.Recent(100), 5)
	assert.Empty(t, j.Recent(0))
}

func TestCompact(t *testing.T) {
	j, _ := newJournal(t)

	alive := uuid.New()
	gone := uuid.New()
	require.NoError(t, j.Append(types.NewOperation(types.PushKind{EntryID: alive, FileCount: 1})))
	require.NoError(t, j.Append(types.NewOperation(types.PushKind{EntryID: gone, FileCount: 1})))
	require.NoError(t, j.Append(types.NewOperation(types.CleanKind{RemovedCount: 1, Days: 30})))

	require.NoError(t, j.Compact([]uuid.UUID{alive}))

	require.Equal(t, 2, j.Count())
	assert.Len(t, j.ForEntry(alive), 1)
	assert.Empty(t, j.ForEntry(gone))
	// Identity-less records survive compaction.
	last, _ := j.Last()
	assert.Equal(t, types.OpTypeClean, last.Kind.Type())
}

func TestCorruptJournalDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.json")
	require.NoError(t, os.WriteFile(path, []byte("][ garbage"), 0644))

	j := journal.New(filesystem.NewOS(), path)
	assert.Equal(t, 0, j.Count())

	// The store stays usable after degrading.
	require.NoError(t, j.Append(types.NewOperation(types.DumpKind{EntryCount: 0})))
	assert.Equal(t, 1, j.Count())
}

func TestClear(t *testing.T) {
	j, path := newJournal(t)
	require.NoError(t, j.Append(types.NewOperation(types.DumpKind{EntryCount: 1})))

	require.NoError(t, j.Clear())
	assert.Equal(t, 0, j.Count())

	reloaded := journal.New(filesystem.NewOS(), path)
	assert.Equal(t, 0, reloaded.Count())
}
