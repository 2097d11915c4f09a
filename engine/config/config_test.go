package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
log_level = "debug"

[window]
title = "hair"
width = 1280
height = 720

[renderer]
msaa = false
`)
	cfg := Default()
	require.NoError(t, Parse(data, cfg))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "hair", cfg.Window.Title)
	assert.Equal(t, uint32(1280), cfg.Window.Width)
	assert.False(t, cfg.Renderer.MSAA)
	// untouched keys keep their defaults
	assert.Equal(t, "shaders", cfg.Assets.ShaderDir)
	assert.Equal(t, float32(50), cfg.Camera.FovY)
}

func TestParseRejectsZeroWindow(t *testing.T) {
	cfg := Default()
	err := Parse([]byte("[window]\nwidth = 0\n"), cfg)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestParseRejectsInvertedClipPlanes(t *testing.T) {
	cfg := Default()
	err := Parse([]byte("[camera]\nnear = 10.0\nfar = 1.0\n"), cfg)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "vkr.toml")
	require.NoError(t, os.WriteFile(p, []byte("[assets]\nroot = \"data\"\n"), 0o644))
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.Assets.Root)
}
