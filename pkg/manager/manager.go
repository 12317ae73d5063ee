// Package manager orchestrates the entry lifecycle: creation,
// restoration, deletion, and cleanup. It owns the ordering of
// filesystem mutations so that a crash at any point never leaves the
// index pointing at missing data and never loses track of a relocated
// file.
package manager

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/stash/pkg/errors"
	"github.com/arthur-debert/stash/pkg/filesystem"
	"github.com/arthur-debert/stash/pkg/index"
	"github.com/arthur-debert/stash/pkg/journal"
	"github.com/arthur-debert/stash/pkg/logging"
	"github.com/arthur-debert/stash/pkg/paths"
	"github.com/arthur-debert/stash/pkg/storage"
	"github.com/arthur-debert/stash/pkg/types"
)

// Mode selects how items are relocated into the store.
type Mode string

const (
	// ModeMove relocates the originals into the store.
	ModeMove Mode = "move"
	// ModeCopy leaves the originals in place.
	ModeCopy Mode = "copy"
	// ModeSymlink places links in the store pointing at the originals.
	ModeSymlink Mode = "symlink"
)

// Manager performs all entry lifecycle operations against one store.
// It is single-writer by design: concurrent invocations against the
// same store are not safe and not supported.
type Manager struct {
	fsys    types.FS
	paths   *paths.Paths
	index   *index.Store
	journal *journal.Store
	logger  zerolog.Logger

	// verifyIntegrity controls whether regular files are hashed when
	// captured.
	verifyIntegrity bool
}

// New builds a manager over an existing index and journal, creating
// the entries directory if needed.
func New(fsys types.FS, p *paths.Paths, idx *index.Store, jnl *journal.Store, verifyIntegrity bool) (*Manager, error) {
	if err := fsys.MkdirAll(p.EntriesDir(), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to create entries directory %s", p.EntriesDir())
	}
	return &Manager{
		fsys:            fsys,
		paths:           p,
		index:           idx,
		journal:         jnl,
		logger:          logging.GetLogger("manager"),
		verifyIntegrity: verifyIntegrity,
	}, nil
}

// Index exposes the metadata index for listing surfaces.
func (m *Manager) Index() *index.Store {
	return m.index
}

// Journal exposes the operation journal for history surfaces.
func (m *Manager) Journal() *journal.Store {
	return m.journal
}

// CreateOptions configures entry creation.
type CreateOptions struct {
	// Name labels the entry. When empty and exactly one path is
	// stashed, the entry is named after that path's base name.
	Name string
	Mode Mode
	// AllowDirSymlink permits symlink mode on directories.
	AllowDirSymlink bool
	// WorkingDirectory overrides the recorded origin; defaults to the
	// process working directory.
	WorkingDirectory string
}

// Create captures the given paths into a fresh entry.
//
// Ordering invariant: every item is physically relocated before the
// manifest is written, the manifest is written before the index entry
// is registered, and the journal record comes last. A crash therefore
// never leaves the index pointing at missing data, and items relocated
// before a mid-operation failure are still findable on disk.
func (m *Manager) Create(itemPaths []string, opts CreateOptions) (*types.Entry, error) {
	if len(itemPaths) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no paths provided")
	}
	if opts.Mode == "" {
		opts.Mode = ModeMove
	}

	workingDir := opts.WorkingDirectory
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrIOFailure, "failed to determine working directory")
		}
		workingDir = wd
	}

	name := opts.Name
	if name == "" && len(itemPaths) == 1 {
		name = filepath.Base(itemPaths[0])
	}

	// Snapshot every item before any mutation so the manifest records
	// the pre-stash filesystem state. Relative paths are taken against
	// the working directory.
	items := make([]types.Item, 0, len(itemPaths))
	for _, p := range itemPaths {
		item, err := filesystem.Snapshot(m.fsys, absPathFor(p, workingDir), m.verifyIntegrity)
		if err != nil {
			return nil, err
		}
		item.OriginalPath = p
		item.StashedPath = stashedPathFor(p, workingDir)
		if opts.Mode == ModeSymlink && item.Kind == types.ItemKindDirectory && !opts.AllowDirSymlink {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"refusing to symlink directory %s without explicit override", p)
		}
		items = append(items, item)
	}

	entry := types.NewEntry(name, items, workingDir, opts.Mode == ModeMove)

	dataDir := m.paths.EntryDataDir(entry.UUID)
	if err := m.fsys.MkdirAll(dataDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to create data directory %s", dataDir)
	}

	for _, item := range entry.Items {
		src := absPathFor(item.OriginalPath, workingDir)
		dest := filepath.Join(dataDir, item.StashedPath)
		if parent := filepath.Dir(dest); parent != dataDir {
			if err := m.fsys.MkdirAll(parent, 0755); err != nil {
				return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to create %s", parent)
			}
		}

		var err error
		switch opts.Mode {
		case ModeMove:
			err = filesystem.MoveRecursive(m.fsys, src, dest)
		case ModeCopy:
			err = filesystem.CopyRecursive(m.fsys, src, dest)
		case ModeSymlink:
			err = filesystem.CreateSymlink(m.fsys, src, dest)
		default:
			err = errors.Newf(errors.ErrInvalidInput, "unknown mode %q", opts.Mode)
		}
		if err != nil {
			return nil, err
		}
	}

	// Items are on disk; now the manifest, then the index, then the
	// journal.
	if err := m.writeManifest(entry); err != nil {
		return nil, err
	}
	if err := m.index.Add(entry.Metadata()); err != nil {
		return nil, err
	}

	var kind types.OperationKind
	if opts.Mode == ModeCopy {
		kind = types.CopyKind{EntryID: entry.UUID, FileCount: len(entry.Items)}
	} else {
		kind = types.PushKind{EntryID: entry.UUID, FileCount: len(entry.Items)}
	}
	if err := m.journal.Append(types.NewOperation(kind)); err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("entry", entry.ShortID()).
		Str("mode", string(opts.Mode)).
		Int("items", len(entry.Items)).
		Msg("entry created")
	return entry, nil
}

// PopOptions configures restoration.
type PopOptions struct {
	Destination string
	// Copy restores the items but keeps the entry in the store.
	Copy bool
	// Force overwrites colliding destination paths.
	Force bool
}

// Pop restores an entry's items to the destination. An empty
// identifier selects the most recent entry.
//
// Collision handling is check-all-then-act: without Force, every
// destination is verified free before any item moves, so a rejected
// pop restores nothing. The entry is deleted from the store only after
// all items are restored, unless Copy is set.
func (m *Manager) Pop(identifier string, opts PopOptions) (*types.Entry, error) {
	meta, err := m.resolve(identifier)
	if err != nil {
		return nil, err
	}
	entry, err := m.Load(meta.UUID)
	if err != nil {
		return nil, err
	}

	if err := m.restoreItems(entry, opts.Destination, opts.Force); err != nil {
		return nil, err
	}

	if !opts.Copy {
		if err := m.deleteEntryFiles(entry.UUID); err != nil {
			return nil, err
		}
	}

	if err := m.journal.Append(types.NewOperation(types.PopKind{
		EntryID:     entry.UUID,
		Destination: opts.Destination,
	})); err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("entry", entry.ShortID()).
		Str("destination", opts.Destination).
		Bool("copy", opts.Copy).
		Msg("entry popped")
	return entry, nil
}

// Peek copies an entry's items to the destination without removing the
// entry and without touching the journal.
func (m *Manager) Peek(identifier, destination string, force bool) (*types.Entry, error) {
	meta, err := m.resolve(identifier)
	if err != nil {
		return nil, err
	}
	entry, err := m.Load(meta.UUID)
	if err != nil {
		return nil, err
	}
	if err := m.restoreItems(entry, destination, force); err != nil {
		return nil, err
	}
	return entry, nil
}

// Restore pops an entry back to its recorded originating working
// directory.
func (m *Manager) Restore(identifier string, force bool) (*types.Entry, error) {
	meta, err := m.resolve(identifier)
	if err != nil {
		return nil, err
	}
	entry, err := m.Load(meta.UUID)
	if err != nil {
		return nil, err
	}
	return m.Pop(entry.UUID.String(), PopOptions{
		Destination: entry.WorkingDirectory,
		Force:       force,
	})
}

// restoreItems copies each item from the entry's data tree to the
// destination, reapplying permissions and modified times.
func (m *Manager) restoreItems(entry *types.Entry, destination string, force bool) error {
	dataDir := m.paths.EntryDataDir(entry.UUID)

	// Check-all-then-act: a collision without force fails before any
	// item is restored.
	if !force {
		var collisions []string
		for _, item := range entry.Items {
			dest := filepath.Join(destination, item.StashedPath)
			if filesystem.Exists(m.fsys, dest) {
				collisions = append(collisions, dest)
			}
		}
		if len(collisions) > 0 {
			return errors.Newf(errors.ErrCollision,
				"destination already exists: %s (use force to overwrite)",
				strings.Join(collisions, ", ")).
				WithDetail("collisions", collisions)
		}
	}

	for _, item := range entry.Items {
		src := filepath.Join(dataDir, item.StashedPath)
		dest := filepath.Join(destination, item.StashedPath)

		if err := m.fsys.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to create %s", filepath.Dir(dest))
		}
		if force && filesystem.Exists(m.fsys, dest) {
			if err := m.fsys.RemoveAll(dest); err != nil {
				return errors.Wrapf(err, errors.ErrIOFailure, "failed to overwrite %s", dest)
			}
		}

		if err := filesystem.CopyRecursive(m.fsys, src, dest); err != nil {
			return err
		}
		if err := filesystem.SetPermissions(m.fsys, dest, item.Permissions); err != nil {
			return err
		}
		filesystem.RestoreModTime(m.fsys, dest, item.Modified)
	}
	return nil
}

// Delete removes an entry: the on-disk directory recursively, and the
// index record unconditionally (even when directory removal fails, so
// the index never points at a half-removed entry). Filesystem failure
// is still surfaced.
func (m *Manager) Delete(id uuid.UUID) error {
	entryDir := m.paths.EntryDir(id)
	dirExisted := filesystem.Exists(m.fsys, entryDir)

	var fsErr error
	if dirExisted {
		if err := m.fsys.RemoveAll(entryDir); err != nil {
			fsErr = errors.Wrapf(err, errors.ErrIOFailure, "failed to remove %s", entryDir)
		}
	}

	_, found, err := m.index.Remove(id)
	if err != nil {
		return err
	}
	if !dirExisted && !found {
		return errors.Newf(errors.ErrNotFound, "entry %s not found", types.ShortID(id))
	}
	if fsErr != nil {
		return fsErr
	}

	return m.journal.Append(types.NewOperation(types.DropKind{
		EntryID: id,
		Deleted: true,
	}))
}

// deleteEntryFiles removes an entry's directory and index record after
// a successful destructive pop.
func (m *Manager) deleteEntryFiles(id uuid.UUID) error {
	entryDir := m.paths.EntryDir(id)
	if err := m.fsys.RemoveAll(entryDir); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to remove %s", entryDir)
	}
	_, _, err := m.index.Remove(id)
	return err
}

// Clean evicts every entry created strictly earlier than now−days.
// Index removal is the authoritative decision and happens first;
// directory removal afterward is best-effort since the index has
// already committed.
func (m *Manager) Clean(days int64) ([]uuid.UUID, error) {
	removed, err := m.index.RemoveOlderThan(days)
	if err != nil {
		return nil, err
	}

	for _, id := range removed {
		dir := m.paths.EntryDir(id)
		if err := m.fsys.RemoveAll(dir); err != nil {
			m.logger.Warn().Err(err).Str("dir", dir).Msg("failed to remove entry directory during clean")
		}
	}

	if err := m.journal.Append(types.NewOperation(types.CleanKind{
		RemovedCount: len(removed),
		Days:         days,
	})); err != nil {
		return nil, err
	}
	return removed, nil
}

// Load reads an entry's full manifest from disk.
func (m *Manager) Load(id uuid.UUID) (*types.Entry, error) {
	manifestPath := m.paths.ManifestPath(id)
	var entry types.Entry
	found, err := storage.Load(m.fsys, manifestPath, &entry)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf(errors.ErrNotFound, "entry %s not found", types.ShortID(id))
	}
	return &entry, nil
}

// LoadByIdentifier resolves a human-supplied string against the index
// and loads the matching manifest.
func (m *Manager) LoadByIdentifier(identifier string) (*types.Entry, error) {
	meta, err := m.resolve(identifier)
	if err != nil {
		return nil, err
	}
	return m.Load(meta.UUID)
}

// Resolve maps a human-supplied identifier to entry metadata: exact
// UUID first, then name equality, then a unique UUID prefix. Multiple
// prefix matches fail rather than guess.
func (m *Manager) Resolve(identifier string) (types.EntryMetadata, error) {
	return m.resolve(identifier)
}

func (m *Manager) resolve(identifier string) (types.EntryMetadata, error) {
	if identifier == "" {
		meta, ok := m.index.MostRecent()
		if !ok {
			return types.EntryMetadata{}, errors.New(errors.ErrNotFound, "stash is empty")
		}
		return meta, nil
	}

	if id, err := uuid.Parse(identifier); err == nil {
		if meta, ok := m.index.Find(id); ok {
			return meta, nil
		}
	}
	if meta, ok := m.index.FindByName(identifier); ok {
		return meta, nil
	}

	matches := m.index.FindByPrefix(identifier)
	switch len(matches) {
	case 0:
		return types.EntryMetadata{}, errors.Newf(errors.ErrNotFound, "entry not found: %s", identifier)
	case 1:
		return matches[0], nil
	default:
		candidates := make([]string, len(matches))
		for i, meta := range matches {
			candidates[i] = meta.DisplayName()
		}
		return types.EntryMetadata{}, errors.Newf(errors.ErrAmbiguous,
			"identifier %q matches multiple entries: %s", identifier,
			strings.Join(candidates, ", ")).
			WithDetail("candidates", candidates)
	}
}

// List returns the index metadata for all entries, newest last.
func (m *Manager) List() []types.EntryMetadata {
	return m.index.All()
}

// MostRecent returns the newest entry's metadata.
func (m *Manager) MostRecent() (types.EntryMetadata, bool) {
	return m.index.MostRecent()
}

// Search returns entries whose name contains the pattern or whose UUID
// starts with it.
func (m *Manager) Search(pattern string) []types.EntryMetadata {
	return m.index.Search(pattern)
}

// Rename relabels an entry. The mutation is metadata only: manifest
// rewritten, index updated, Rename record journaled.
func (m *Manager) Rename(identifier, newName string) error {
	meta, err := m.resolve(identifier)
	if err != nil {
		return err
	}
	entry, err := m.Load(meta.UUID)
	if err != nil {
		return err
	}

	oldName := entry.Name
	entry.Name = newName
	entry.Touch()

	if err := m.writeManifest(entry); err != nil {
		return err
	}
	if err := m.index.UpdateEntryName(entry.UUID, newName); err != nil {
		return err
	}
	return m.journal.Append(types.NewOperation(types.RenameKind{
		EntryID: entry.UUID,
		OldName: oldName,
		NewName: newName,
	}))
}

// FindEntriesContainingPath returns the identities of entries holding
// an item with the given original path.
func (m *Manager) FindEntriesContainingPath(path string) ([]uuid.UUID, error) {
	var matches []uuid.UUID
	for _, meta := range m.index.All() {
		entry, err := m.Load(meta.UUID)
		if err != nil {
			return nil, err
		}
		if _, ok := entry.FindItem(path); ok {
			matches = append(matches, meta.UUID)
		}
	}
	return matches, nil
}

// Dump restores every entry to the destination. With deleteAfter the
// entries are popped (and removed from the store); otherwise they are
// peeked and retained. One Dump record summarizes the operation.
func (m *Manager) Dump(destination string, deleteAfter bool) (int, error) {
	metas := m.index.All()
	for _, meta := range metas {
		var err error
		if deleteAfter {
			_, err = m.Pop(meta.UUID.String(), PopOptions{Destination: destination, Force: true})
		} else {
			_, err = m.Peek(meta.UUID.String(), destination, true)
		}
		if err != nil {
			return 0, err
		}
	}

	if err := m.journal.Append(types.NewOperation(types.DumpKind{
		EntryCount: len(metas),
		Deleted:    deleteAfter,
	})); err != nil {
		return 0, err
	}
	return len(metas), nil
}

// writeManifest persists the entry's full manifest document.
func (m *Manager) writeManifest(entry *types.Entry) error {
	return storage.Save(m.fsys, m.paths.ManifestPath(entry.UUID), entry)
}

// absPathFor resolves a user-supplied path against the entry's
// working directory.
func absPathFor(path, workingDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workingDir, path)
}

// stashedPathFor derives the store-relative path an item is kept
// under. Relative inputs are used as-is; absolute inputs are made
// relative to the working directory when inside it, and otherwise have
// their leading separators stripped.
func stashedPathFor(path, workingDir string) string {
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) && !strings.HasPrefix(clean, "..") {
		return clean
	}
	abs := absPathFor(clean, workingDir)
	if rel, err := filepath.Rel(workingDir, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return strings.TrimLeft(abs, string(filepath.Separator))
}
