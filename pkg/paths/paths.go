// Package paths provides centralized path handling for stash.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for the on-disk store layout.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
)

// Environment variable names
const (
	// EnvStoreDir overrides the location of the stash store
	EnvStoreDir = "STASH_STORE_DIR"

	// EnvConfigDir overrides the XDG config directory for stash
	EnvConfigDir = "STASH_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for stash
	EnvStateDir = "STASH_STATE_DIR"
)

// Store layout names.
// IMPORTANT: these define the on-disk store structure and are NOT
// user-configurable; they must remain consistent across installations.
const (
	// StashDirName is the directory name for stash-specific files
	StashDirName = "stash"

	// EntriesDirName is the subdirectory holding one directory per entry
	EntriesDirName = "entries"

	// EntryDataDirName is the subdirectory of an entry holding its data tree
	EntryDataDirName = "data"

	// ManifestFileName is the per-entry manifest document
	ManifestFileName = "manifest.json"

	// IndexFileName is the metadata index document
	IndexFileName = "index.json"

	// JournalFileName is the operation journal document
	JournalFileName = "journal.json"

	// ConfigFileName is the user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "stash.log"
)

// Paths provides centralized path management for the stash store.
type Paths struct {
	storeDir  string
	configDir string
	stateDir  string
}

// New resolves the store layout from the environment, falling back to
// the XDG base directories.
func New() *Paths {
	storeDir := os.Getenv(EnvStoreDir)
	if storeDir == "" {
		storeDir = filepath.Join(xdg.DataHome, StashDirName)
	}

	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		configDir = filepath.Join(xdg.ConfigHome, StashDirName)
	}

	stateDir := os.Getenv(EnvStateDir)
	if stateDir == "" {
		stateDir = filepath.Join(xdg.StateHome, StashDirName)
	}

	return &Paths{
		storeDir:  storeDir,
		configDir: configDir,
		stateDir:  stateDir,
	}
}

// StoreDir returns the root of the stash store.
func (p *Paths) StoreDir() string {
	return p.storeDir
}

// EntriesDir returns the directory holding one subdirectory per entry.
func (p *Paths) EntriesDir() string {
	return filepath.Join(p.storeDir, EntriesDirName)
}

// EntryDir returns the directory for a specific entry.
func (p *Paths) EntryDir(id uuid.UUID) string {
	return filepath.Join(p.EntriesDir(), id.String())
}

// EntryDataDir returns the data subtree of a specific entry.
func (p *Paths) EntryDataDir(id uuid.UUID) string {
	return filepath.Join(p.EntryDir(id), EntryDataDirName)
}

// ManifestPath returns the manifest document path of a specific entry.
func (p *Paths) ManifestPath(id uuid.UUID) string {
	return filepath.Join(p.EntryDir(id), ManifestFileName)
}

// IndexPath returns the path of the index document.
func (p *Paths) IndexPath() string {
	return filepath.Join(p.storeDir, IndexFileName)
}

// JournalPath returns the path of the journal document.
func (p *Paths) JournalPath() string {
	return filepath.Join(p.storeDir, JournalFileName)
}

// ConfigDir returns the configuration directory.
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// ConfigFilePath returns the user configuration file path.
func (p *Paths) ConfigFilePath() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// StateDir returns the state directory.
func (p *Paths) StateDir() string {
	return p.stateDir
}

// LogFilePath returns the log file path.
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}
