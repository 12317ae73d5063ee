package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stash/pkg/types"
)

func TestNewEntry(t *testing.T) {
	items := []types.Item{
		{OriginalPath: "a.txt", StashedPath: "a.txt", Kind: types.ItemKindFile, SizeBytes: 100},
		{OriginalPath: "b", StashedPath: "b", Kind: types.ItemKindDirectory, SizeBytes: 250},
	}

	entry := types.NewEntry("work", items, "/home/user/project", true)

	assert.NotEqual(t, "00000000", entry.UUID.String()[:8])
	assert.Equal(t, "work", entry.Name)
	assert.Equal(t, uint64(350), entry.TotalSizeBytes, "total size must be the sum of item sizes")
	assert.Equal(t, "/home/user/project", entry.WorkingDirectory)
	assert.True(t, entry.WasDestructive)
	assert.WithinDuration(t, time.Now().UTC(), entry.Created, time.Minute)
	assert.Equal(t, entry.Created, entry.Updated)
}

func TestEntryShortID(t *testing.T) {
	entry := types.NewEntry("", nil, "/tmp", false)

	require.Len(t, entry.ShortID(), 6)
	assert.Equal(t, entry.UUID.String()[:6], entry.ShortID())
}

func TestEntryDisplayName(t *testing.T) {
	named := types.NewEntry("report", nil, "/tmp", false)
	assert.Equal(t, "report", named.DisplayName())

	unnamed := types.NewEntry("", nil, "/tmp", false)
	assert.Equal(t, unnamed.ShortID(), unnamed.DisplayName())
}

func TestEntryTouch(t *testing.T) {
	entry := types.NewEntry("", nil, "/tmp", false)
	before := entry.Updated

	time.Sleep(5 * time.Millisecond)
	entry.Touch()

	assert.True(t, entry.Updated.After(before))
	assert.Equal(t, before, entry.Created, "touch must not change created")
}

func TestEntryFindItem(t *testing.T) {
	items := []types.Item{
		{OriginalPath: "src/main.go", Kind: types.ItemKindFile},
		{OriginalPath: "docs", Kind: types.ItemKindDirectory},
	}
	entry := types.NewEntry("", items, "/tmp", false)

	item, ok := entry.FindItem("docs")
	require.True(t, ok)
	assert.Equal(t, types.ItemKindDirectory, item.Kind)

	_, ok = entry.FindItem("missing.txt")
	assert.False(t, ok)
}

func TestEntryMetadata(t *testing.T) {
	items := []types.Item{
		{OriginalPath: "a", SizeBytes: 10},
		{OriginalPath: "b", SizeBytes: 20},
	}
	entry := types.NewEntry("snap", items, "/tmp", true)

	meta := entry.Metadata()
	assert.Equal(t, entry.UUID, meta.UUID)
	assert.Equal(t, "snap", meta.Name)
	assert.Equal(t, entry.Created, meta.Created)
	assert.Equal(t, uint64(30), meta.TotalSizeBytes)
	assert.Equal(t, 2, meta.ItemCount)
}

func TestItemMatchesPattern(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		pattern string
		want    bool
	}{
		{"exact", "report.pdf", "report.pdf", true},
		{"substring", "docs/report.pdf", "report", true},
		{"case insensitive", "Docs/Report.PDF", "report", true},
		{"no match", "notes.txt", "report", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := types.Item{OriginalPath: tt.path}
			assert.Equal(t, tt.want, item.MatchesPattern(tt.pattern))
		})
	}
}
