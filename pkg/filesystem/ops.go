package filesystem

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"

	"github.com/arthur-debert/stash/pkg/errors"
	"github.com/arthur-debert/stash/pkg/types"
)

// Exists reports whether a path exists, without following symlinks.
// A dangling symlink counts as existing.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Lstat(path)
	return err == nil
}

// KindOf classifies a path without following symlinks.
func KindOf(info fs.FileInfo) types.ItemKind {
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		return types.ItemKindSymlink
	case info.IsDir():
		return types.ItemKindDirectory
	default:
		return types.ItemKindFile
	}
}

// Snapshot captures a path's kind, size, permissions and modified time
// before any mutation, optionally hashing regular file contents. The
// returned item carries the path as both original and stashed path;
// callers adjust the stashed path for their layout.
func Snapshot(fsys types.FS, path string, withHash bool) (types.Item, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return types.Item{}, errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", path)
	}

	kind := KindOf(info)
	size, err := TreeSize(fsys, path)
	if err != nil {
		return types.Item{}, err
	}

	item := types.Item{
		OriginalPath: path,
		StashedPath:  path,
		Kind:         kind,
		SizeBytes:    size,
		Permissions:  uint32(info.Mode().Perm()),
		Modified:     info.ModTime().UTC(),
	}

	if withHash && kind == types.ItemKindFile {
		hash, err := HashFile(fsys, path)
		if err != nil {
			return types.Item{}, err
		}
		item.Hash = hash
	}
	return item, nil
}

// TreeSize returns the total byte size of a path: a file's length, the
// recursive sum for a directory, zero for a symlink.
func TreeSize(fsys types.FS, path string) (uint64, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", path)
	}

	switch KindOf(info) {
	case types.ItemKindFile:
		return uint64(info.Size()), nil
	case types.ItemKindSymlink:
		return 0, nil
	case types.ItemKindDirectory:
		entries, err := fsys.ReadDir(path)
		if err != nil {
			return 0, errors.Wrapf(err, errors.ErrIOFailure, "failed to read directory %s", path)
		}
		var total uint64
		for _, entry := range entries {
			size, err := TreeSize(fsys, filepath.Join(path, entry.Name()))
			if err != nil {
				return 0, err
			}
			total += size
		}
		return total, nil
	default:
		return 0, nil
	}
}

// HashFile returns the content hash of a regular file in the
// "sha256:<hex>" manifest format.
func HashFile(fsys types.FS, path string) (string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrIOFailure, "failed to hash %s", path)
	}
	return fmt.Sprintf("sha256:%x", sha256.Sum256(data)), nil
}

// CopyRecursive copies src to dst. Directories are copied structurally,
// symlinks are recreated pointing at their original target (never
// dereferenced), and source timestamps are reapplied afterward.
func CopyRecursive(fsys types.FS, src, dst string) error {
	info, err := fsys.Lstat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", src)
	}

	switch KindOf(info) {
	case types.ItemKindDirectory:
		if err := fsys.MkdirAll(dst, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to create directory %s", dst)
		}
		entries, err := fsys.ReadDir(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to read directory %s", src)
		}
		for _, entry := range entries {
			if err := CopyRecursive(fsys, filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		// MkdirAll modes are umask-masked; make them exact.
		if err := fsys.Chmod(dst, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to set permissions on %s", dst)
		}
	case types.ItemKindSymlink:
		target, err := fsys.Readlink(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to read link %s", src)
		}
		if err := fsys.Symlink(target, dst); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to recreate link %s", dst)
		}
		// Symlink mtimes are not portably settable; nothing to reapply.
		return nil
	case types.ItemKindFile:
		data, err := fsys.ReadFile(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", src)
		}
		if err := fsys.WriteFile(dst, data, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to write %s", dst)
		}
		// WriteFile modes are umask-masked; make them exact.
		if err := fsys.Chmod(dst, info.Mode().Perm()); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to set permissions on %s", dst)
		}
	}

	return CopyTimestamps(fsys, src, dst)
}

// MoveRecursive relocates src to dst. A same-filesystem rename is
// attempted first; on failure (typically cross-device) it falls back to
// copy-then-delete-source. The copy path reapplies timestamps, which a
// real rename preserves for free.
func MoveRecursive(fsys types.FS, src, dst string) error {
	if err := fsys.Rename(src, dst); err == nil {
		return nil
	}

	if err := CopyRecursive(fsys, src, dst); err != nil {
		return err
	}

	info, err := fsys.Lstat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", src)
	}
	if info.IsDir() {
		if err := fsys.RemoveAll(src); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to remove source %s", src)
		}
		return nil
	}
	if err := fsys.Remove(src); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to remove source %s", src)
	}
	return nil
}

// CreateSymlink places a link at linkPath pointing at target. It fails
// outright on platforms without symlink support rather than silently
// falling back to a copy.
func CreateSymlink(fsys types.FS, target, linkPath string) error {
	if runtime.GOOS == "windows" {
		return errors.New(errors.ErrUnsupported, "symlink mode is not supported on this platform")
	}
	if err := fsys.Symlink(target, linkPath); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to create symlink %s", linkPath)
	}
	return nil
}

// CopyTimestamps reapplies src's modified time to dst, best-effort.
func CopyTimestamps(fsys types.FS, src, dst string) error {
	info, err := fsys.Lstat(src)
	if err != nil {
		return nil
	}
	if KindOf(info) == types.ItemKindSymlink {
		return nil
	}
	_ = fsys.Chtimes(dst, info.ModTime(), info.ModTime())
	return nil
}
