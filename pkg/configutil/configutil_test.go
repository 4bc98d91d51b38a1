package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server  string `json:"server"`
	Timeout int    `json:"timeout"`
	Nested  struct {
		Enabled bool   `json:"enabled"`
		Name    string `json:"name"`
	} `json:"nested"`
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "app.json5"), []byte(`{
		// comments are allowed
		server: "https://example.org/cgi-bin/search",
		timeout: 60,
		nested: { name: "base" },
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "app.local.json5"), []byte(`{timeout: 5, nested: {enabled: true}}`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	require.NoError(t, err)
	require.Equal(t, "https://example.org/cgi-bin/search", cfg.Server)
	require.Equal(t, 5, cfg.Timeout)
	require.True(t, cfg.Nested.Enabled)
	require.Equal(t, "base", cfg.Nested.Name)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nope.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigOver(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "app.json5"), []byte(`{timeout: 0}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "app.local.json5"), []byte(`{nested: {name: ""}}`), 0600)
	require.NoError(t, err)

	base := testConfig{Server: "a", Timeout: 60}
	base.Nested.Name = "base"
	base.Nested.Enabled = true

	cfg, err := ReadConfigOver(filepath.Join(dir, "app.json5"), base)
	require.NoError(t, err)
	require.Equal(t, "a", cfg.Server)
	require.Equal(t, 0, cfg.Timeout)
	require.Equal(t, "", cfg.Nested.Name)
	require.True(t, cfg.Nested.Enabled)

	// base is untouched
	require.Equal(t, 60, base.Timeout)
}
