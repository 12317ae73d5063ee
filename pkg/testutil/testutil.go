// Package testutil provides shared helpers for tests that exercise a
// real store on a temporary directory.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stash/pkg/filesystem"
	"github.com/arthur-debert/stash/pkg/index"
	"github.com/arthur-debert/stash/pkg/journal"
	"github.com/arthur-debert/stash/pkg/manager"
	"github.com/arthur-debert/stash/pkg/paths"
	"github.com/arthur-debert/stash/pkg/types"
)

// TempStore points the store environment at a fresh temp directory and
// returns the filesystem and resolved paths.
func TempStore(t *testing.T) (types.FS, *paths.Paths) {
	t.Helper()

	tempDir := t.TempDir()
	t.Setenv(paths.EnvStoreDir, filepath.Join(tempDir, "store"))
	t.Setenv(paths.EnvConfigDir, filepath.Join(tempDir, "config"))
	t.Setenv(paths.EnvStateDir, filepath.Join(tempDir, "state"))

	return filesystem.NewOS(), paths.New()
}

// NewManager builds a manager over a fresh temp store.
func NewManager(t *testing.T) (*manager.Manager, *paths.Paths) {
	t.Helper()

	fsys, p := TempStore(t)
	idx := index.New(fsys, p.IndexPath())
	jnl := journal.New(fsys, p.JournalPath())

	mgr, err := manager.New(fsys, p, idx, jnl, true)
	require.NoError(t, err)
	return mgr, p
}

// WriteFile creates a file with the given content and permissions,
// creating parent directories as needed.
func WriteFile(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	// umask may have masked bits off; make the mode exact.
	require.NoError(t, os.Chmod(path, perm))
}

// ReadFile returns a file's content, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
