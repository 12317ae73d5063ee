// Package index maintains the persisted registry of entry metadata.
// The index is the authoritative record of which entries exist; it is
// one JSON document rewritten wholesale (atomically) on every mutation.
package index

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arthur-debert/stash/pkg/errors"
	"github.com/arthur-debert/stash/pkg/logging"
	"github.com/arthur-debert/stash/pkg/storage"
	"github.com/arthur-debert/stash/pkg/types"
)

// Document is the persisted form of the index.
type Document struct {
	Name           string                `json:"name,omitempty"`
	Created        time.Time             `json:"created"`
	Updated        time.Time             `json:"updated"`
	Entries        []types.EntryMetadata `json:"entries"`
	TotalSizeBytes uint64                `json:"total_size_bytes"`
}

func newDocument() Document {
	now := time.Now().UTC()
	return Document{
		Created: now,
		Updated: now,
		Entries: []types.EntryMetadata{},
	}
}

// Store is the in-memory index backed by its document on disk. Every
// mutator persists synchronously before returning.
type Store struct {
	fsys types.FS
	path string
	doc  Document
}

// New loads the index document at path. A missing document starts
// empty; a document that fails to parse also degrades to empty, since
// the registry can be rebuilt and refusing to start would be worse.
func New(fsys types.FS, path string) *Store {
	s := &Store{fsys: fsys, path: path, doc: newDocument()}

	found, err := storage.Load(fsys, path, &s.doc)
	if err != nil {
		logger := logging.GetLogger("index")
		logger.Warn().Err(err).Str("path", path).Msg("index unreadable, starting from empty registry")
		s.doc = newDocument()
	} else if !found {
		s.doc = newDocument()
	}
	if s.doc.Entries == nil {
		s.doc.Entries = []types.EntryMetadata{}
	}
	return s
}

// Path returns the location of the index document.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	s.doc.Updated = time.Now().UTC()
	return storage.Save(s.fsys, s.path, &s.doc)
}

// Add registers an entry's metadata and persists.
func (s *Store) Add(meta types.EntryMetadata) error {
	s.doc.Entries = append(s.doc.Entries, meta)
	s.doc.TotalSizeBytes += meta.TotalSizeBytes
	return s.save()
}

// Remove deletes an entry's metadata by identity and persists. The
// removed metadata is returned when one was found.
func (s *Store) Remove(id uuid.UUID) (types.EntryMetadata, bool, error) {
	for i, meta := range s.doc.Entries {
		if meta.UUID == id {
			s.doc.Entries = append(s.doc.Entries[:i], s.doc.Entries[i+1:]...)
			s.doc.TotalSizeBytes -= meta.TotalSizeBytes
			return meta, true, s.save()
		}
	}
	return types.EntryMetadata{}, false, nil
}

// Find returns the metadata for an identity.
func (s *Store) Find(id uuid.UUID) (types.EntryMetadata, bool) {
	for _, meta := range s.doc.Entries {
		if meta.UUID == id {
			return meta, true
		}
	}
	return types.EntryMetadata{}, false
}

// FindByName returns the first entry whose name matches exactly.
func (s *Store) FindByName(name string) (types.EntryMetadata, bool) {
	for _, meta := range s.doc.Entries {
		if meta.Name != "" && meta.Name == name {
			return meta, true
		}
	}
	return types.EntryMetadata{}, false
}

// FindByIdentifier resolves a human-supplied string: UUID parse first,
// then name equality.
func (s *Store) FindByIdentifier(identifier string) (types.EntryMetadata, bool) {
	if id, err := uuid.Parse(identifier); err == nil {
		if meta, ok := s.Find(id); ok {
			return meta, true
		}
	}
	return s.FindByName(identifier)
}

// FindByPrefix returns every entry whose UUID string starts with the
// given prefix.
func (s *Store) FindByPrefix(prefix string) []types.EntryMetadata {
	var matches []types.EntryMetadata
	for _, meta := range s.doc.Entries {
		if strings.HasPrefix(meta.UUID.String(), strings.ToLower(prefix)) {
			matches = append(matches, meta)
		}
	}
	return matches
}

// Search returns entries whose name contains the pattern
// (case-insensitively) or whose UUID starts with it.
func (s *Store) Search(pattern string) []types.EntryMetadata {
	lower := strings.ToLower(pattern)
	var matches []types.EntryMetadata
	for _, meta := range s.doc.Entries {
		nameMatch := meta.Name != "" && strings.Contains(strings.ToLower(meta.Name), lower)
		if nameMatch || strings.HasPrefix(meta.UUID.String(), lower) {
			matches = append(matches, meta)
		}
	}
	return matches
}

// RemoveOlderThan evicts every entry created strictly before
// now−days and persists. The removed identities are returned.
func (s *Store) RemoveOlderThan(days int64) ([]uuid.UUID, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -int(days))

	var removed []uuid.UUID
	kept := s.doc.Entries[:0]
	var keptSize uint64
	for _, meta := range s.doc.Entries {
		if meta.Created.Before(cutoff) {
			removed = append(removed, meta.UUID)
			continue
		}
		kept = append(kept, meta)
		keptSize += meta.TotalSizeBytes
	}

	if len(removed) == 0 {
		return nil, nil
	}

	s.doc.Entries = kept
	s.doc.TotalSizeBytes = keptSize
	return removed, s.save()
}

// UpdateEntryName renames an entry's metadata and persists.
func (s *Store) UpdateEntryName(id uuid.UUID, name string) error {
	for i := range s.doc.Entries {
		if s.doc.Entries[i].UUID == id {
			s.doc.Entries[i].Name = name
			return s.save()
		}
	}
	return errors.Newf(errors.ErrNotFound, "entry %s not found in index", types.ShortID(id))
}

// MostRecent returns the newest entry, by insertion order.
func (s *Store) MostRecent() (types.EntryMetadata, bool) {
	if len(s.doc.Entries) == 0 {
		return types.EntryMetadata{}, false
	}
	return s.doc.Entries[len(s.doc.Entries)-1], true
}

// All returns the entries in insertion order.
func (s *Store) All() []types.EntryMetadata {
	out := make([]types.EntryMetadata, len(s.doc.Entries))
	copy(out, s.doc.Entries)
	return out
}

// Contains reports whether an identity is registered.
func (s *Store) Contains(id uuid.UUID) bool {
	_, ok := s.Find(id)
	return ok
}

// Count returns the number of registered entries.
func (s *Store) Count() int {
	return len(s.doc.Entries)
}

// IsEmpty reports whether the index has no entries.
func (s *Store) IsEmpty() bool {
	return len(s.doc.Entries) == 0
}

// TotalSize returns the aggregate size of all entries in bytes.
func (s *Store) TotalSize() uint64 {
	return s.doc.TotalSizeBytes
}

// ByDate returns the entries sorted newest first.
func (s *Store) ByDate() []types.EntryMetadata {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Created.After(out[j].Created)
	})
	return out
}

// BySize returns the entries sorted largest first.
func (s *Store) BySize() []types.EntryMetadata {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalSizeBytes > out[j].TotalSizeBytes
	})
	return out
}

// ByName returns the entries sorted by name. Unnamed entries sort
// after named ones; ties keep insertion order.
func (s *Store) ByName() []types.EntryMetadata {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Name, out[j].Name
		switch {
		case a != "" && b != "":
			return a < b
		case a != "":
			return true
		default:
			return false
		}
	})
	return out
}

// Clear drops every entry and persists.
func (s *Store) Clear() error {
	name := s.doc.Name
	s.doc = newDocument()
	s.doc.Name = name
	return s.save()
}

// SetName renames the index itself and persists.
func (s *Store) SetName(name string) error {
	s.doc.Name = name
	return s.save()
}
