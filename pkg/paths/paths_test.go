package paths_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/arthur-debert/stash/pkg/paths"
)

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(paths.EnvStoreDir, "/custom/store")
	t.Setenv(paths.EnvConfigDir, "/custom/config")
	t.Setenv(paths.EnvStateDir, "/custom/state")

	p := paths.New()

	assert.Equal(t, "/custom/store", p.StoreDir())
	assert.Equal(t, "/custom/config", p.ConfigDir())
	assert.Equal(t, "/custom/state", p.StateDir())
}

func TestXDGFallback(t *testing.T) {
	t.Setenv(paths.EnvStoreDir, "")
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv(paths.EnvStateDir, "")

	p := paths.New()

	assert.Equal(t, paths.StashDirName, filepath.Base(p.StoreDir()))
	assert.Equal(t, paths.StashDirName, filepath.Base(p.ConfigDir()))
	assert.Equal(t, paths.StashDirName, filepath.Base(p.StateDir()))
}

func TestStoreLayout(t *testing.T) {
	t.Setenv(paths.EnvStoreDir, "/store")
	t.Setenv(paths.EnvConfigDir, "/config")
	t.Setenv(paths.EnvStateDir, "/state")

	p := paths.New()
	id := uuid.MustParse("12345678-1234-4234-8234-123456789abc")

	assert.Equal(t, "/store/entries", p.EntriesDir())
	assert.Equal(t, "/store/entries/"+id.String(), p.EntryDir(id))
	assert.Equal(t, "/store/entries/"+id.String()+"/data", p.EntryDataDir(id))
	assert.Equal(t, "/store/entries/"+id.String()+"/manifest.json", p.ManifestPath(id))
	assert.Equal(t, "/store/index.json", p.IndexPath())
	assert.Equal(t, "/store/journal.json", p.JournalPath())
	assert.Equal(t, "/config/config.toml", p.ConfigFilePath())
	assert.Equal(t, "/state/stash.log", p.LogFilePath())
}
