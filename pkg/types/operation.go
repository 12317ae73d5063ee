package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Operation type discriminators as persisted in the journal document.
const (
	OpTypePush   = "push"
	OpTypeCopy   = "copy"
	OpTypePop    = "pop"
	OpTypePeek   = "peek"
	OpTypeDrop   = "drop"
	OpTypeDump   = "dump"
	OpTypeRename = "rename"
	OpTypeClean  = "clean"
	OpTypeImport = "import"
)

// OperationKind is the tagged variant carried by an operation record.
// Each variant holds the minimum context needed to describe itself.
type OperationKind interface {
	// Type returns the persisted discriminator for the variant.
	Type() string
	// Describe renders a one-line human summary of the operation.
	Describe() string
	// Entry returns the entry the operation refers to, if it refers
	// to exactly one.
	Entry() (uuid.UUID, bool)
}

// PushKind records a destructive stash of files into a new entry.
type PushKind struct {
	EntryID   uuid.UUID `json:"entry_id"`
	FileCount int       `json:"file_count"`
}

func (k PushKind) Type() string { return OpTypePush }
func (k PushKind) Describe() string {
	return fmt.Sprintf("Pushed %d file(s) to entry %s", k.FileCount, ShortID(k.EntryID))
}
func (k PushKind) Entry() (uuid.UUID, bool) { return k.EntryID, true }

// CopyKind records a non-destructive stash (originals left in place).
type CopyKind struct {
	EntryID   uuid.UUID `json:"entry_id"`
	FileCount int       `json:"file_count"`
}

func (k CopyKind) Type() string { return OpTypeCopy }
func (k CopyKind) Describe() string {
	return fmt.Sprintf("Copied %d file(s) to entry %s", k.FileCount, ShortID(k.EntryID))
}
func (k CopyKind) Entry() (uuid.UUID, bool) { return k.EntryID, true }

// PopKind records a restoration of an entry to a destination.
type PopKind struct {
	EntryID     uuid.UUID `json:"entry_id"`
	Destination string    `json:"destination"`
}

func (k PopKind) Type() string { return OpTypePop }
func (k PopKind) Describe() string {
	return fmt.Sprintf("Popped entry %s to %s", ShortID(k.EntryID), k.Destination)
}
func (k PopKind) Entry() (uuid.UUID, bool) { return k.EntryID, true }

// PeekKind records a copy-out that left the entry in place.
type PeekKind struct {
	EntryID     uuid.UUID `json:"entry_id"`
	Destination string    `json:"destination"`
}

func (k PeekKind) Type() string { return OpTypePeek }
func (k PeekKind) Describe() string {
	return fmt.Sprintf("Peeked entry %s to %s", ShortID(k.EntryID), k.Destination)
}
func (k PeekKind) Entry() (uuid.UUID, bool) { return k.EntryID, true }

// DropKind records removal of an entry from the store.
type DropKind struct {
	EntryID uuid.UUID `json:"entry_id"`
	Deleted bool      `json:"deleted"`
}

func (k DropKind) Type() string { return OpTypeDrop }
func (k DropKind) Describe() string {
	if k.Deleted {
		return fmt.Sprintf("Dropped and deleted entry %s", ShortID(k.EntryID))
	}
	return fmt.Sprintf("Dropped entry %s to disk", ShortID(k.EntryID))
}
func (k DropKind) Entry() (uuid.UUID, bool) { return k.EntryID, true }

// DumpKind records a bulk restore of every entry in the store.
type DumpKind struct {
	EntryCount int  `json:"entry_count"`
	Deleted    bool `json:"deleted"`
}

func (k DumpKind) Type() string { return OpTypeDump }
func (k DumpKind) Describe() string {
	if k.Deleted {
		return fmt.Sprintf("Dumped and deleted %d entries", k.EntryCount)
	}
	return fmt.Sprintf("Dumped %d entries to disk", k.EntryCount)
}
func (k DumpKind) Entry() (uuid.UUID, bool) { return uuid.UUID{}, false }

// RenameKind records a metadata-only rename of an entry.
type RenameKind struct {
	EntryID uuid.UUID `json:"entry_id"`
	OldName string    `json:"old_name"`
	NewName string    `json:"new_name"`
}

func (k RenameKind) Type() string { return OpTypeRename }
func (k RenameKind) Describe() string {
	return fmt.Sprintf("Renamed entry %s from %q to %q", ShortID(k.EntryID), k.OldName, k.NewName)
}
func (k RenameKind) Entry() (uuid.UUID, bool) { return k.EntryID, true }

// CleanKind records an age-based bulk eviction.
type CleanKind struct {
	RemovedCount int   `json:"removed_count"`
	Days         int64 `json:"days"`
}

func (k CleanKind) Type() string { return OpTypeClean }
func (k CleanKind) Describe() string {
	return fmt.Sprintf("Cleaned %d entries older than %d days", k.RemovedCount, k.Days)
}
func (k CleanKind) Entry() (uuid.UUID, bool) { return uuid.UUID{}, false }

// ImportKind records entries brought in from an archive.
type ImportKind struct {
	Path       string `json:"path"`
	EntryCount int    `json:"entry_count"`
}

func (k ImportKind) Type() string { return OpTypeImport }
func (k ImportKind) Describe() string {
	return fmt.Sprintf("Imported %d entries from %s", k.EntryCount, k.Path)
}
func (k ImportKind) Entry() (uuid.UUID, bool) { return uuid.UUID{}, false }

// Operation is one journal record: an identity, a timestamp, and a
// tagged variant describing what was executed. Records are descriptive
// only and never a source of current-state truth.
type Operation struct {
	ID        uuid.UUID
	Timestamp time.Time
	Kind      OperationKind
}

// NewOperation wraps a variant in a fresh journal record.
func NewOperation(kind OperationKind) Operation {
	return Operation{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Kind:      kind,
	}
}

// Describe renders the record's variant.
func (o Operation) Describe() string {
	return o.Kind.Describe()
}

// InvolvesEntry reports whether the record refers to the given entry.
func (o Operation) InvolvesEntry(id uuid.UUID) bool {
	ref, ok := o.Kind.Entry()
	return ok && ref == id
}

// IsUndoable reports whether the operation has a meaningful inverse.
func (o Operation) IsUndoable() bool {
	switch k := o.Kind.(type) {
	case PushKind, PopKind, RenameKind:
		return true
	case DropKind:
		return !k.Deleted
	case CopyKind, PeekKind, DumpKind, CleanKind, ImportKind:
		return false
	default:
		return false
	}
}

type operationEnvelope struct {
	ID        uuid.UUID       `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
}

// MarshalJSON persists the record as a {type, data} envelope so the
// variant survives round-trips without open-ended dynamic dispatch.
func (o Operation) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(o.Kind)
	if err != nil {
		return nil, err
	}
	return json.Marshal(operationEnvelope{
		ID:        o.ID,
		Timestamp: o.Timestamp,
		Type:      o.Kind.Type(),
		Data:      data,
	})
}

// UnmarshalJSON decodes the envelope and dispatches on the type tag.
func (o *Operation) UnmarshalJSON(b []byte) error {
	var env operationEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}

	var kind OperationKind
	var err error
	switch env.Type {
	case OpTypePush:
		var k PushKind
		err = json.Unmarshal(env.Data, &k)
		kind = k
	case OpTypeCopy:
		var k CopyKind
		err = json.Unmarshal(env.Data, &k)
		kind = k
	case OpTypePop:
		var k PopKind
		err = json.Unmarshal(env.Data, &k)
		kind = k
	case OpTypePeek:
		var k PeekKind
		err = json.Unmarshal(env.Data, &k)
		kind = k
	case OpTypeDrop:
		var k DropKind
		err = json.Unmarshal(env.Data, &k)
		kind = k
	case OpTypeDump:
		var k DumpKind
		err = json.Unmarshal(env.Data, &k)
		kind = k
	case OpTypeRename:
		var k RenameKind
		err = json.Unmarshal(env.Data, &k)
		kind = k
	case OpTypeClean:
		var k CleanKind
		err = json.Unmarshal(env.Data, &k)
		kind = k
	case OpTypeImport:
		var k ImportKind
		err = json.Unmarshal(env.Data, &k)
		kind = k
	default:
		return fmt.Errorf("unknown operation type %q", env.Type)
	}
	if err != nil {
		return err
	}

	o.ID = env.ID
	o.Timestamp = env.Timestamp
	o.Kind = kind
	return nil
}
