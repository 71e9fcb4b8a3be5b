package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Run("rejects bad world dimensions", func(t *testing.T) {
		cfg := Default()
		cfg.WorldWidth = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects alpha outside (0,1)", func(t *testing.T) {
		cfg := Default()
		cfg.CapitalShareAlpha = 1.0
		assert.Error(t, cfg.Validate())
		cfg.CapitalShareAlpha = -0.2
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects inverted gdp bounds", func(t *testing.T) {
		cfg := Default()
		cfg.GDPMax = cfg.GDPMin / 2
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown realism level", func(t *testing.T) {
		cfg := Default()
		cfg.Realism = "ultra"
		assert.Error(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("yaml overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := "num_nations: 5\nseed: 99\nrealism: high\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 5, cfg.NumNations)
		assert.Equal(t, int64(99), cfg.Seed)
		assert.Equal(t, RealismHigh, cfg.Realism)
		// Untouched keys keep their defaults.
		assert.Equal(t, Default().GDPMax, cfg.GDPMax)
	})

	t.Run("invalid yaml value fails validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("world_width: -3\n"), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestRealismMultiplier(t *testing.T) {
	cfg := Default()

	cfg.Realism = RealismLow
	assert.Equal(t, 0.5, cfg.RealismMultiplier())
	cfg.Realism = RealismMedium
	assert.Equal(t, 0.75, cfg.RealismMultiplier())
	cfg.Realism = RealismHigh
	assert.Equal(t, 1.0, cfg.RealismMultiplier())
}
