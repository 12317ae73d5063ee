package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemKind classifies what an item was on the original filesystem.
type ItemKind string

const (
	ItemKindFile      ItemKind = "file"
	ItemKindDirectory ItemKind = "directory"
	ItemKindSymlink   ItemKind = "symlink"
)

// Item is one captured file, directory, or symlink inside an entry.
// Paths are relative to the working directory the entry was created in
// (OriginalPath) and to the entry's data directory (StashedPath).
type Item struct {
	OriginalPath string    `json:"original_path"`
	StashedPath  string    `json:"stashed_path"`
	Kind         ItemKind  `json:"kind"`
	SizeBytes    uint64    `json:"size_bytes"`
	Permissions  uint32    `json:"permissions"`
	Modified     time.Time `json:"modified"`
	// Hash is "sha256:<hex>" for regular files, empty otherwise.
	Hash string `json:"hash,omitempty"`
}

// MatchesPattern reports whether the item's original path contains the
// pattern, case-insensitively.
func (i Item) MatchesPattern(pattern string) bool {
	return strings.Contains(strings.ToLower(i.OriginalPath), strings.ToLower(pattern))
}

// Entry is one stash transaction's persisted record. It is stored as a
// single manifest document inside the entry's store directory.
type Entry struct {
	UUID             uuid.UUID `json:"uuid"`
	Name             string    `json:"name,omitempty"`
	Created          time.Time `json:"created"`
	Updated          time.Time `json:"updated"`
	WorkingDirectory string    `json:"working_directory"`
	Items            []Item    `json:"items"`
	TotalSizeBytes   uint64    `json:"total_size_bytes"`
	// WasDestructive is true when the entry was created by moving the
	// originals out of the working tree (as opposed to copying).
	WasDestructive bool `json:"was_destructive"`
}

// NewEntry allocates a fresh entry around the given items. The total
// size is derived from the items.
func NewEntry(name string, items []Item, workingDirectory string, wasDestructive bool) *Entry {
	var total uint64
	for _, item := range items {
		total += item.SizeBytes
	}
	now := time.Now().UTC()
	return &Entry{
		UUID:             uuid.New(),
		Name:             name,
		Created:          now,
		Updated:          now,
		WorkingDirectory: workingDirectory,
		Items:            items,
		TotalSizeBytes:   total,
		WasDestructive:   wasDestructive,
	}
}

// Touch updates the entry's updated timestamp.
func (e *Entry) Touch() {
	e.Updated = time.Now().UTC()
}

// ShortID returns the first six characters of the entry's UUID, used
// wherever a compact human-readable reference is needed.
func (e *Entry) ShortID() string {
	return ShortID(e.UUID)
}

// DisplayName returns the entry's name, falling back to its short ID
// for unnamed entries.
func (e *Entry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ShortID()
}

// AgeHours returns how many whole hours ago the entry was created.
func (e *Entry) AgeHours() int64 {
	return int64(time.Since(e.Created).Hours())
}

// AgeDays returns how many whole days ago the entry was created.
func (e *Entry) AgeDays() int64 {
	return e.AgeHours() / 24
}

// FindItem returns the item whose original path matches, if any.
func (e *Entry) FindItem(originalPath string) (Item, bool) {
	for _, item := range e.Items {
		if item.OriginalPath == originalPath {
			return item, true
		}
	}
	return Item{}, false
}

// Metadata returns the lightweight index view of the entry.
func (e *Entry) Metadata() EntryMetadata {
	return EntryMetadata{
		UUID:           e.UUID,
		Name:           e.Name,
		Created:        e.Created,
		TotalSizeBytes: e.TotalSizeBytes,
		ItemCount:      len(e.Items),
	}
}

// EntryMetadata is the summary view of an entry kept in the index so
// that listing and search never load full manifests.
type EntryMetadata struct {
	UUID           uuid.UUID `json:"uuid"`
	Name           string    `json:"name,omitempty"`
	Created        time.Time `json:"created"`
	TotalSizeBytes uint64    `json:"total_size_bytes"`
	ItemCount      int       `json:"item_count"`
}

// DisplayName returns the metadata's name or the short UUID form.
func (m EntryMetadata) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return ShortID(m.UUID)
}

// ShortID returns the first six characters of a UUID string.
func ShortID(id uuid.UUID) string {
	return id.String()[:6]
}
