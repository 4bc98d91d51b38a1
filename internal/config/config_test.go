package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astrocat.json5")
	err := os.WriteFile(path, []byte(`{
		heasarc: { server: "https://www.isdc.unige.ch/browse/w3query.pl" },
		cache: { ttl: 10 },
	}`), 0600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://www.isdc.unige.ch/browse/w3query.pl", cfg.Heasarc.Server)
	require.Equal(t, 30, cfg.Heasarc.Timeout)
	require.Equal(t, Default().CDMS.Server, cfg.CDMS.Server)
	require.Equal(t, 10, cfg.Cache.TTL)
	require.Equal(t, 256, cfg.Cache.Size)

	opts := cfg.CDMSTransport()
	require.Equal(t, time.Minute, opts.Timeout)
	require.Equal(t, 10*time.Second, opts.CacheTTL)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadZeroDisables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astrocat.json5")
	err := os.WriteFile(path, []byte(`{cache: {ttl: 0}, requests_per_second: 0}`), 0600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Cache.TTL)
	require.Equal(t, 256, cfg.Cache.Size)
	require.Equal(t, 0.0, cfg.RequestsPerSecond)

	opts := cfg.HeasarcTransport()
	require.Equal(t, time.Duration(0), opts.CacheTTL)
	require.Equal(t, 0.0, opts.RequestsPerSecond)
	require.Equal(t, 30*time.Second, opts.Timeout)
}

func TestHeasarcClientDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astrocat.json5")
	err := os.WriteFile(path, []byte(`{
		heasarc: { mission: "integral_rev3_scw", result_max: 100, filters: { good_isgri: ">1000" } },
	}`), 0600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	client := cfg.HeasarcClient()
	require.Equal(t, Default().Heasarc.Server, client.Server)
	require.Equal(t, "integral_rev3_scw", client.Defaults.Mission)
	require.Equal(t, 100, client.Defaults.ResultMax)
	require.Equal(t, map[string]string{"good_isgri": ">1000"}, client.Defaults.Filters)
}
