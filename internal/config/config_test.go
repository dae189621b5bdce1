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
	if err := Default().Validate(); err != nil {
		t.Errorf("Expected default config to validate, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero room", func(c *Config) { c.Room.HalfSize = 0 }},
		{"negative gravity", func(c *Config) { c.Room.Gravity = -1 }},
		{"zero sub-step", func(c *Config) { c.Step.SubStep = 0 }},
		{"frame clamp below sub-step", func(c *Config) { c.Step.MaxFrameTime = c.Step.SubStep / 2 }},
		{"negative radius", func(c *Config) { c.Spawn.RadiusMin = -0.1 }},
		{"inverted mass range", func(c *Config) { c.Spawn.MassMin, c.Spawn.MassMax = 5, 1 }},
		{"restitution above one", func(c *Config) { c.Spawn.RestitutionMax = 1.5 }},
		{"negative speed", func(c *Config) { c.Spawn.SpeedMin = -1 }},
		{"grid does not fit", func(c *Config) { c.Spawn.Count = 10000 }},
		{"no hysteresis", func(c *Config) { c.Octree.CollapseThreshold = c.Octree.SplitThreshold }},
		{"negative depth", func(c *Config) { c.Octree.MaxDepth = -1 }},
		{"unknown backend", func(c *Config) { c.Backend = "cuda" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestGridDim(t *testing.T) {
	cfg := Default()
	for count, want := range map[int]int{0: 0, 1: 1, 8: 2, 9: 3, 64: 4, 65: 5} {
		cfg.Spawn.Count = count
		assert.Equal(t, want, cfg.GridDim(), "count %d", count)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.toml")
	data := []byte(`
backend = "gpu"

[room]
half_size = 10.0

[spawn]
count = 27
seed = 42
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, BackendGPU, cfg.Backend)
	assert.Equal(t, float32(10), cfg.Room.HalfSize)
	assert.Equal(t, 27, cfg.Spawn.Count)
	assert.Equal(t, uint64(42), cfg.Spawn.Seed)
	assert.Equal(t, def.Room.Gravity, cfg.Room.Gravity)
	assert.Equal(t, def.Octree, cfg.Octree)
	assert.Equal(t, def.Step, cfg.Step)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.toml")
	require.NoError(t, os.WriteFile(path, []byte("[room]\nwobble = 3\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.toml")
	require.NoError(t, os.WriteFile(path, []byte("[octree]\ncollapse_threshold = 9\n"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStockConfigFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "ballroom.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
