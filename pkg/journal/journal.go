// Package journal keeps the append-only history of executed
// operations. The journal is advisory: it describes what happened and
// is never consulted to determine current state — the index and the
// on-disk entry directories are authoritative.
package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/arthur-debert/stash/pkg/logging"
	"github.com/arthur-debert/stash/pkg/storage"
	"github.com/arthur-debert/stash/pkg/types"
)

// Store is the in-memory journal backed by one JSON document, rewritten
// wholesale per append. Acceptable at the expected low volume.
type Store struct {
	fsys       types.FS
	path       string
	operations []types.Operation
}

// New loads the journal document at path. Missing or unparseable
// documents degrade to an empty history; losing advisory records is
// preferable to refusing to start.
func New(fsys types.FS, path string) *Store {
	s := &Store{fsys: fsys, path: path}

	found, err := storage.Load(fsys, path, &s.operations)
	if err != nil {
		logger := logging.GetLogger("journal")
		logger.Warn().Err(err).Str("path", path).Msg("journal unreadable, starting from empty history")
		s.operations = nil
	} else if !found {
		s.operations = nil
	}
	return s
}

// Path returns the location of the journal document.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	ops := s.operations
	if ops == nil {
		ops = []types.Operation{}
	}
	return storage.Save(s.fsys, s.path, ops)
}

// Append adds a record and persists.
func (s *Store) Append(op types.Operation) error {
	s.operations = append(s.operations, op)
	return s.save()
}

// Last returns the most recent record.
func (s *Store) Last() (types.Operation, bool) {
	if len(s.operations) == 0 {
		return types.Operation{}, false
	}
	return s.operations[len(s.operations)-1], true
}

// Since returns the records strictly after the given time, in append
// order.
func (s *Store) Since(t time.Time) []types.Operation {
	var out []types.Operation
	for _, op := range s.operations {
		if op.Timestamp.After(t) {
			out = append(out, op)
		}
	}
	return out
}

// ForEntry returns the records referring to the given entry, in append
// order.
func (s *Store) ForEntry(id uuid.UUID) []types.Operation {
	var out []types.Operation
	for _, op := range s.operations {
		if op.InvolvesEntry(id) {
			out = append(out, op)
		}
	}
	return out
}

// Recent returns at most n of the newest records, in append order.
func (s *Store) Recent(n int) []types.Operation {
	if n <= 0 {
		return nil
	}
	start := len(s.operations) - n
	if start < 0 {
		start = 0
	}
	out := make([]types.Operation, len(s.operations)-start)
	copy(out, s.operations[start:])
	return out
}

// Count returns the number of records.
func (s *Store) Count() int {
	return len(s.operations)
}

// Clear drops the whole history and persists.
func (s *Store) Clear() error {
	s.operations = nil
	return s.save()
}

// Compact drops records referring to entries that no longer exist.
// Records that reference no entry (clean, dump, import) are kept.
func (s *Store) Compact(existing []uuid.UUID) error {
	alive := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		alive[id] = struct{}{}
	}

	kept := s.operations[:0]
	for _, op := range s.operations {
		if id, ok := op.Kind.Entry(); ok {
			if _, live := alive[id]; !live {
				continue
			}
		}
		kept = append(kept, op)
	}
	s.operations = kept
	return s.save()
}
