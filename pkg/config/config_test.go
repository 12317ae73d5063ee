package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/stash/pkg/config"
	"github.com/arthur-debert/stash/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Defaults.CleanDays)
	assert.Equal(t, 100, cfg.Defaults.WarnSizeMB)
	assert.Equal(t, config.AmbiguityAsk, cfg.Defaults.AmbiguityMode)
	assert.True(t, cfg.Behavior.PreserveMtime)
	assert.True(t, cfg.Behavior.VerifyIntegrity)
	assert.False(t, cfg.Behavior.FollowSymlinks)
	assert.Equal(t, "2006-01-02 15:04", cfg.Display.DateFormat)
	assert.True(t, cfg.Display.ShowSizes)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadUserOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[defaults]
clean_days = 7
ambiguity_mode = "prefer_push"

[display]
show_sizes = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Defaults.CleanDays)
	assert.Equal(t, config.AmbiguityPreferPush, cfg.Defaults.AmbiguityMode)
	assert.False(t, cfg.Display.ShowSizes)

	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Defaults.WarnSizeMB)
	assert.True(t, cfg.Behavior.VerifyIntegrity)
	assert.Equal(t, "2006-01-02 15:04", cfg.Display.DateFormat)
}

func TestLoadInvalidToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("defaults = [unclosed"), 0644))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}
