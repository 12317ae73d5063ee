// Package storage persists whole JSON documents with atomic replace
// semantics: each save writes a temporary sibling, flushes it, and
// renames it over the target, so a crash never leaves a truncated
// document behind.
package storage

import (
	"encoding/json"
	"path/filepath"

	"github.com/arthur-debert/stash/pkg/errors"
	"github.com/arthur-debert/stash/pkg/types"
)

// Load reads the document at path into v. A missing document is not an
// error; found reports whether one existed. A document that exists but
// fails to parse yields an INVALID_FORMAT error so callers can decide
// whether to degrade to a default.
func Load(fsys types.FS, path string, v interface{}) (found bool, err error) {
	if _, statErr := fsys.Lstat(path); statErr != nil {
		return false, nil
	}

	data, readErr := fsys.ReadFile(path)
	if readErr != nil {
		return true, errors.Wrapf(readErr, errors.ErrIOFailure, "failed to read document %s", path)
	}
	if jsonErr := json.Unmarshal(data, v); jsonErr != nil {
		return true, errors.Wrapf(jsonErr, errors.ErrInvalidFormat, "failed to parse document %s", path)
	}
	return true, nil
}

// Save replaces the document at path with the serialized form of v.
// The write is a full-document atomic replace, never an in-place edit.
func Save(fsys types.FS, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to serialize document %s", path)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to create directory for %s", path)
	}

	tmp := path + ".tmp"
	if err := fsys.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to write document %s", tmp)
	}
	// Flush before the rename; otherwise a power loss can leave the
	// renamed document empty.
	if err := fsys.Sync(tmp); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to flush document %s", tmp)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to replace document %s", path)
	}
	return nil
}
