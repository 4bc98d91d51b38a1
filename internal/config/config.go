// Package config is the configuration of the astrocat CLI and the clients it builds.
package config

import (
	"errors"
	"os"
	"time"

	"astrocat/internal/catalogs/heasarc"
	"astrocat/internal/components/telemetry"
	"astrocat/internal/transport"
	"astrocat/pkg/configutil"
)

// DefaultFile is searched for from the working directory upwards.
const DefaultFile = "astrocat.json5"

type CDMS struct {
	Server string `json:"server"`
	// Timeout in seconds.
	Timeout int `json:"timeout"`
	// Catdir is a path to a catdir.cat species directory, empty means the
	// embedded snapshot, which covers only a subset of the species.
	Catdir string `json:"catdir"`
}

type Heasarc struct {
	Server  string `json:"server"`
	Timeout int    `json:"timeout"`
	// Defaults for options a query does not set.
	Mission          string            `json:"mission"`
	CoordinateSystem string            `json:"coordsys"`
	Fields           string            `json:"fields"`
	ResultMax        int               `json:"result_max"`
	Filters          map[string]string `json:"filters"`
}

type Cache struct {
	// TTL in seconds, 0 disables caching.
	TTL  int `json:"ttl"`
	Size int `json:"size"`
}

type Config struct {
	CDMS              CDMS             `json:"cdms"`
	Heasarc           Heasarc          `json:"heasarc"`
	Cache             Cache            `json:"cache"`
	RequestsPerSecond float64          `json:"requests_per_second"`
	UserAgent         string           `json:"user_agent"`
	Telemetry         telemetry.Config `json:"telemetry"`
}

func Default() Config {
	return Config{
		CDMS: CDMS{
			Server:  "https://cdms.astro.uni-koeln.de/cgi-bin/cdmssearch",
			Timeout: 60,
		},
		Heasarc: Heasarc{
			Server:  "https://heasarc.gsfc.nasa.gov/cgi-bin/W3Browse/w3query.pl",
			Timeout: 30,
		},
		Cache: Cache{
			TTL:  3600,
			Size: 256,
		},
		RequestsPerSecond: 2,
	}
}

// Load reads path (or DefaultFile found upwards from the working directory
// when path is empty) on top of Default, so only the settings a file
// mentions change. A missing DefaultFile is not an error, a missing explicit
// path is.
func Load(path string) (Config, error) {
	if path == "" {
		cfg, err := configutil.ReadRecursivelyOver(DefaultFile, Default())
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return cfg, err
	}
	return configutil.ReadConfigOver(path, Default())
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (c Config) transportOptions(timeout int) transport.Options {
	return transport.Options{
		Timeout:           seconds(timeout),
		UserAgent:         c.UserAgent,
		CacheTTL:          seconds(c.Cache.TTL),
		CacheSize:         c.Cache.Size,
		RequestsPerSecond: c.RequestsPerSecond,
	}
}

// CDMSTransport is the transport options for the CDMS client.
func (c Config) CDMSTransport() transport.Options {
	return c.transportOptions(c.CDMS.Timeout)
}

// HeasarcTransport is the transport options for the HEASARC client.
func (c Config) HeasarcTransport() transport.Options {
	return c.transportOptions(c.Heasarc.Timeout)
}

// HeasarcClient is the configuration of the HEASARC client.
func (c Config) HeasarcClient() heasarc.Config {
	return heasarc.Config{
		Server: c.Heasarc.Server,
		Defaults: heasarc.Options{
			Mission:          c.Heasarc.Mission,
			CoordinateSystem: c.Heasarc.CoordinateSystem,
			Fields:           c.Heasarc.Fields,
			ResultMax:        c.Heasarc.ResultMax,
			Filters:          c.Heasarc.Filters,
		},
	}
}
