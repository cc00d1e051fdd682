package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsZeroConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	require.Equal(t, Config{}, cfg)
}

func TestLoadParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatchbench.toml")
	contents := "engine = \"threaded\"\nsteplimit = 500\nprogram = \"fixtures/primes.bin\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "threaded", cfg.Engine)
	require.EqualValues(t, 500, cfg.StepLimit)
	require.Equal(t, "fixtures/primes.bin", cfg.Program)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("engine = ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
