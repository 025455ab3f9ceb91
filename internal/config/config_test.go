package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matchcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Len(t, cfg.SelfMatchTypes, 11)
	assert.Contains(t, cfg.SelfMatchTypes, "builtins.int")
	assert.Equal(t, []string{"builtins.str", "builtins.bytes", "builtins.bytearray"}, cfg.NonSequenceTypes)
	assert.False(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, "non_sequence_types: [builtins.str]\nverbose: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"builtins.str"}, cfg.NonSequenceTypes)
	assert.True(t, cfg.Verbose)
	assert.Len(t, cfg.SelfMatchTypes, 11)
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "unknown_key: 1\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "self_match_types: [int]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `self_match_types[0] "int"`)
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvConfig, "")
	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := writeConfig(t, "verbose: true\n")
	t.Setenv(EnvConfig, path)
	cfg, err = Resolve("")
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)

	explicit := writeConfig(t, "non_sequence_types: []\n")
	cfg, err = Resolve(explicit)
	require.NoError(t, err)
	assert.Empty(t, cfg.NonSequenceTypes)
	assert.False(t, cfg.Verbose)
}
