// Package config loads stash's user configuration: built-in defaults
// overlaid with an optional TOML file in the config directory.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/stash/pkg/errors"
)

// AmbiguityMode controls what happens when context inference cannot
// choose between push and pop.
type AmbiguityMode string

const (
	// AmbiguityAsk prompts the user interactively when possible.
	AmbiguityAsk AmbiguityMode = "ask"
	// AmbiguityPreferPush resolves mixed contexts toward stashing.
	AmbiguityPreferPush AmbiguityMode = "prefer_push"
	// AmbiguityPreferPop resolves mixed contexts toward restoring.
	AmbiguityPreferPop AmbiguityMode = "prefer_pop"
)

// Defaults holds the knobs applied when a command omits them.
type Defaults struct {
	CleanDays     int           `koanf:"clean_days"`
	WarnSizeMB    int           `koanf:"warn_size_mb"`
	AmbiguityMode AmbiguityMode `koanf:"ambiguity_mode"`
}

// Behavior holds switches for how items are captured and restored.
type Behavior struct {
	PreserveMtime   bool `koanf:"preserve_mtime"`
	VerifyIntegrity bool `koanf:"verify_integrity"`
	FollowSymlinks  bool `koanf:"follow_symlinks"`
}

// Display holds human-output preferences.
type Display struct {
	DateFormat string `koanf:"date_format"`
	ShowSizes  bool   `koanf:"show_sizes"`
}

// Config is the merged stash configuration.
type Config struct {
	Defaults Defaults `koanf:"defaults"`
	Behavior Behavior `koanf:"behavior"`
	Display  Display  `koanf:"display"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Defaults: Defaults{
			CleanDays:     30,
			WarnSizeMB:    100,
			AmbiguityMode: AmbiguityAsk,
		},
		Behavior: Behavior{
			PreserveMtime:   true,
			VerifyIntegrity: true,
			FollowSymlinks:  false,
		},
		Display: Display{
			DateFormat: "2006-01-02 15:04",
			ShowSizes:  true,
		},
	}
}

// Load merges the built-in defaults with the user config file at
// configPath, if one exists.
func Load(configPath string) (Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	defaults := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"defaults.clean_days":       defaults.Defaults.CleanDays,
		"defaults.warn_size_mb":     defaults.Defaults.WarnSizeMB,
		"defaults.ambiguity_mode":   string(defaults.Defaults.AmbiguityMode),
		"behavior.preserve_mtime":   defaults.Behavior.PreserveMtime,
		"behavior.verify_integrity": defaults.Behavior.VerifyIntegrity,
		"behavior.follow_symlinks":  defaults.Behavior.FollowSymlinks,
		"display.date_format":       defaults.Display.DateFormat,
		"display.show_sizes":        defaults.Display.ShowSizes,
	}, "."), nil); err != nil {
		return defaults, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config, when present
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return defaults, errors.Wrapf(err, errors.ErrConfigParse,
					"failed to parse config file %s", configPath)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return defaults, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}
	return cfg, nil
}
