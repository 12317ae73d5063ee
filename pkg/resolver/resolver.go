// Package resolver infers which operation a stash invocation means.
// Explicit informational and management intents always win; explicit
// push/pop/peek flags come next; otherwise the operation is inferred
// from whether the named paths exist on the filesystem.
//
// The resolver is pure with respect to the stores: it only queries
// path existence and never mutates anything.
package resolver

import (
	"strings"

	"github.com/arthur-debert/stash/pkg/errors"
	"github.com/arthur-debert/stash/pkg/filesystem"
	"github.com/arthur-debert/stash/pkg/types"
)

// Request carries the inputs the calling surface collected: positional
// paths and the flag set. Pointer fields distinguish "not given" from
// a zero value.
type Request struct {
	Items []string

	// Modifiers
	Name    string
	Copy    bool
	Force   bool
	Restore bool

	// Explicit operation overrides
	Push bool
	Pop  bool
	Peek bool

	// Informational / management intents
	List    bool
	Info    bool
	History bool
	Dump    bool
	Init    bool
	Search  *string
	Rename  *string // OLD:NEW
	Tar     *string
	Untar   *string
	Clean   *int
}

// Intent is the resolved operation descriptor, a tagged union matched
// exhaustively by the dispatcher.
type Intent interface {
	intent()
}

// PushIntent stashes the given paths.
type PushIntent struct {
	Items []string
	Name  string
	Copy  bool
}

// PopIntent restores one entry. An empty identifier means the most
// recent entry; Restore sends it to its recorded working directory.
type PopIntent struct {
	Identifier string
	Copy       bool
	Force      bool
	Restore    bool
}

// PeekIntent copies one entry out without removing it.
type PeekIntent struct {
	Identifier string
	Force      bool
}

// ListIntent lists all entries.
type ListIntent struct{}

// SearchIntent searches entry names.
type SearchIntent struct{ Pattern string }

// InfoIntent shows one entry in full.
type InfoIntent struct{ Identifier string }

// HistoryIntent shows the operation journal.
type HistoryIntent struct{}

// CleanIntent evicts entries older than Days.
type CleanIntent struct{ Days int }

// RenameIntent relabels an entry.
type RenameIntent struct{ Old, New string }

// ExportIntent writes the store to an archive.
type ExportIntent struct{ Path string }

// ImportIntent restores entries from an archive into the store.
type ImportIntent struct{ Path string }

// DumpIntent restores every entry to the working directory.
type DumpIntent struct{}

// InitIntent initializes a fresh store.
type InitIntent struct{}

func (PushIntent) intent()    {}
func (PopIntent) intent()     {}
func (PeekIntent) intent()    {}
func (ListIntent) intent()    {}
func (SearchIntent) intent()  {}
func (InfoIntent) intent()    {}
func (HistoryIntent) intent() {}
func (CleanIntent) intent()   {}
func (RenameIntent) intent()  {}
func (ExportIntent) intent()  {}
func (ImportIntent) intent()  {}
func (DumpIntent) intent()    {}
func (InitIntent) intent()    {}

// Infer resolves a request into an intent or a structured error.
func Infer(fsys types.FS, req Request) (Intent, error) {
	// Priority 1: explicit informational and management intents win
	// regardless of path arguments.
	if req.Init {
		return InitIntent{}, nil
	}
	if req.List {
		return ListIntent{}, nil
	}
	if req.Search != nil {
		return SearchIntent{Pattern: *req.Search}, nil
	}
	if req.Info {
		identifier := ""
		if len(req.Items) > 0 {
			identifier = req.Items[0]
		}
		return InfoIntent{Identifier: identifier}, nil
	}
	if req.History {
		return HistoryIntent{}, nil
	}
	if req.Clean != nil {
		return CleanIntent{Days: *req.Clean}, nil
	}
	if req.Rename != nil {
		old, newName, ok := strings.Cut(*req.Rename, ":")
		if !ok || old == "" || newName == "" {
			return nil, errors.New(errors.ErrInvalidInput, "rename must be in OLD:NEW format")
		}
		return RenameIntent{Old: old, New: newName}, nil
	}
	if req.Tar != nil {
		return ExportIntent{Path: *req.Tar}, nil
	}
	if req.Untar != nil {
		return ImportIntent{Path: *req.Untar}, nil
	}
	if req.Dump {
		return DumpIntent{}, nil
	}

	// Priority 2: explicit push/pop/peek overrides.
	if req.Push {
		if len(req.Items) == 0 {
			return nil, errors.New(errors.ErrInvalidInput, "push requires at least one path")
		}
		return PushIntent{Items: req.Items, Name: req.Name, Copy: req.Copy}, nil
	}
	if req.Pop {
		if len(req.Items) > 1 {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"pop takes at most one entry identifier, got %d", len(req.Items))
		}
		return PopIntent{
			Identifier: firstItem(req.Items),
			Copy:       req.Copy,
			Force:      req.Force,
			Restore:    req.Restore,
		}, nil
	}
	if req.Peek {
		if len(req.Items) > 1 {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"peek takes at most one entry identifier, got %d", len(req.Items))
		}
		return PeekIntent{Identifier: firstItem(req.Items), Force: req.Force}, nil
	}

	// Priority 3: heuristic fallback on path existence.
	return inferFromContext(fsys, req)
}

func inferFromContext(fsys types.FS, req Request) (Intent, error) {
	items := req.Items

	// No arguments: restore the most recent entry.
	if len(items) == 0 {
		return PopIntent{Copy: req.Copy, Force: req.Force, Restore: req.Restore}, nil
	}

	var existing, missing []string
	for _, item := range items {
		if filesystem.Exists(fsys, item) {
			existing = append(existing, item)
		} else {
			missing = append(missing, item)
		}
	}

	// Everything exists: stash. Existence always wins over trying to
	// read a path string as an entry identifier.
	if len(missing) == 0 {
		return PushIntent{Items: items, Name: req.Name, Copy: req.Copy}, nil
	}

	// Nothing exists: the single argument names an entry to restore.
	if len(existing) == 0 {
		if len(items) == 1 {
			return PopIntent{
				Identifier: items[0],
				Copy:       req.Copy,
				Force:      req.Force,
				Restore:    req.Restore,
			}, nil
		}
		return nil, errors.Newf(errors.ErrAmbiguous,
			"cannot resolve multiple non-existent items to one entry: %s",
			quoteJoin(items)).
			WithDetail("missing", items)
	}

	// Mixed existence: refuse, reporting both partitions verbatim.
	return nil, errors.Newf(errors.ErrAmbiguous,
		"ambiguous operation: these paths exist locally: %s; these paths do not exist: %s",
		quoteJoin(existing), quoteJoin(missing)).
		WithDetail("existing", existing).
		WithDetail("missing", missing)
}

func firstItem(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}

func quoteJoin(paths []string) string {
	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = "'" + p + "'"
	}
	return strings.Join(quoted, ", ")
}
