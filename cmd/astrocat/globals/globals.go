package globals

import (
	"context"

	"astrocat/internal/catalogs/cdms"
	"astrocat/internal/catalogs/heasarc"
	"astrocat/internal/config"
	"astrocat/internal/components/telemetry"
)

type key struct{}

type Value struct {
	Config  config.Config
	Tel     telemetry.API
	CDMS    *cdms.Client
	Heasarc *heasarc.Client
	// Format is the output format picked with --format.
	Format string
	// DB is the sqlite path results are saved to, empty when not saving.
	DB string
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
