package types

import (
	"io/fs"
	"time"
)

// FS abstracts filesystem operations for testability
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Mutation operations
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error
	Chmod(name string, mode fs.FileMode) error
	Chtimes(name string, atime, mtime time.Time) error

	// Sync flushes a file's contents to stable storage.
	Sync(name string) error
}
