// Package filesystem provides the OS implementation of types.FS and
// the mutation primitives the entry lifecycle manager is built on:
// snapshotting, recursive copy/move, symlinking, content hashing, and
// permission/timestamp preservation.
package filesystem
