package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `
global:
  skip-invalid: true
  translit: nfc
filter:
  gzip: true
partition:
  template: "chunk-{}.dat"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Global.SkipInvalid)
	assert.Equal(t, "nfc", cfg.Global.Translit)
	assert.True(t, cfg.Gzip(false, cfg.Filter))
	assert.False(t, cfg.Gzip(false, cfg.Cat))
	assert.Equal(t, "chunk-{}.dat", cfg.Template("", cfg.Partition, "{}.dat"))
	assert.Equal(t, "{}.dat", cfg.Template("", cfg.Split, "{}.dat"))
}

func TestSkipInvalidPrecedence(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.SkipInvalid(false, cfg.Filter))
	assert.True(t, cfg.SkipInvalid(true, cfg.Filter))

	no := false
	cfg.Global.SkipInvalid = true
	cfg.Filter.SkipInvalid = &no
	assert.False(t, cfg.SkipInvalid(false, cfg.Filter))
	assert.True(t, cfg.SkipInvalid(false, cfg.Cat))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDiscoverMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Discover()
	require.NoError(t, err)
	assert.False(t, cfg.Global.SkipInvalid)
}
