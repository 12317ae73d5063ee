package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stash/pkg/filesystem"
)

func TestGetSetPermissions(t *testing.T) {
	fsys := filesystem.NewOS()
	file := filepath.Join(t.TempDir(), "perms.txt")
	writeFile(t, file, "x", 0600)

	perm, err := filesystem.GetPermissions(fsys, file)
	require.NoError(t, err)
	assert.Equal(t, uint32(0600), perm)

	require.NoError(t, filesystem.SetPermissions(fsys, file, 0755))
	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestSetPermissionsSkipsSymlinks(t *testing.T) {
	fsys := filesystem.NewOS()
	dir := t.TempDir()
	target := filepath.Join(dir, "t.txt")
	writeFile(t, target, "x", 0644)
	link := filepath.Join(dir, "l")
	require.NoError(t, os.Symlink(target, link))

	require.NoError(t, filesystem.SetPermissions(fsys, link, 0700))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm(), "target must be untouched")
}

func TestFormatPermissions(t *testing.T) {
	tests := []struct {
		perm uint32
		want string
	}{
		{0755, "rwxr-xr-x"},
		{0644, "rw-r--r--"},
		{0600, "rw-------"},
		{0777, "rwxrwxrwx"},
		{0000, "---------"},
		{0421, "r---w---x"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, filesystem.FormatPermissions(tt.perm))
		})
	}
}
