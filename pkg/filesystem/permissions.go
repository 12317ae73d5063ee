package filesystem

import (
	"io/fs"
	"strings"
	"time"

	"github.com/arthur-debert/stash/pkg/errors"
	"github.com/arthur-debert/stash/pkg/types"
)

// GetPermissions returns a path's permission bits without following
// symlinks.
func GetPermissions(fsys types.FS, path string) (uint32, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", path)
	}
	return uint32(info.Mode().Perm()), nil
}

// SetPermissions reapplies permission bits to a restored path. Symlinks
// are skipped since their permissions are not meaningful.
func SetPermissions(fsys types.FS, path string, perm uint32) error {
	info, err := fsys.Lstat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", path)
	}
	if KindOf(info) == types.ItemKindSymlink {
		return nil
	}
	if err := fsys.Chmod(path, fs.FileMode(perm)); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to set permissions on %s", path)
	}
	return nil
}

// RestoreModTime reapplies a recorded modified time to a restored path,
// best-effort. Symlinks are skipped.
func RestoreModTime(fsys types.FS, path string, modified time.Time) {
	info, err := fsys.Lstat(path)
	if err != nil || KindOf(info) == types.ItemKindSymlink {
		return
	}
	_ = fsys.Chtimes(path, modified, modified)
}

// permBits maps each octal digit to its rwx rendering.
var permBits = [8]string{"---", "--x", "-w-", "-wx", "r--", "r-x", "rw-", "rwx"}

// FormatPermissions renders permission bits in the familiar ls style,
// e.g. 0o755 becomes "rwxr-xr-x".
func FormatPermissions(perm uint32) string {
	var b strings.Builder
	for shift := 6; shift >= 0; shift -= 3 {
		b.WriteString(permBits[(perm>>shift)&0o7])
	}
	return b.String()
}
