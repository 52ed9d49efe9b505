package cliapp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfigFile_WalksUp(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("output: json\n"), 0o600))

	path, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigFileName), path)

	cfg, err := LoadConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output)
}

func TestLoadConfig_NoneFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &FileConfig{}, cfg)
}

func TestReadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o600))
	_, err := ReadConfig(path)
	assert.Error(t, err)
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	in := &FileConfig{DatabaseURL: "postgres://db", Output: "table"}
	in.LLM.Model = "m"
	require.NoError(t, WriteConfig(path, in))

	out, err := ReadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
