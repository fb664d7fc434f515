package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, int32(1024), cfg.Window.Width)
	assert.True(t, cfg.Render.DepthTest)
	assert.False(t, cfg.Watch)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenegl.yaml")
	src := `
window:
  width: 640
  title: demo
render:
  clear_color: [0, 0.5, 1]
  wireframe: true
log:
  level: debug
watch: true
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int32(640), cfg.Window.Width)
	assert.Equal(t, int32(768), cfg.Window.Height)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, [3]float32{0, 0.5, 1}, cfg.Render.ClearColor)
	assert.True(t, cfg.Render.Wireframe)
	assert.True(t, cfg.Render.DepthTest)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Watch)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [1, 2"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"negative height", func(c *Config) { c.Window.Height = -1 }},
		{"clear color above one", func(c *Config) { c.Render.ClearColor[1] = 2 }},
		{"flat fov", func(c *Config) { c.Render.Fov = 0 }},
		{"wide fov", func(c *Config) { c.Render.Fov = 180 }},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func TestLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window:\n  width: -5\n"), 0o644))

	_, err := Load(path)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Watch = true
	cfg.Window.Title = "saved"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
