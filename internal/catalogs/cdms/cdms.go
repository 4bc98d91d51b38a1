// Package cdms queries the Cologne Database for Molecular Spectroscopy
// line search and parses the fixed width line listings it returns.
package cdms

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"astrocat/internal/catalogs"
	"astrocat/internal/components/assert"
	"astrocat/internal/components/telemetry"
	"astrocat/internal/transport"
)

const (
	report_client_species     = "client.species"
	report_client_query_lines = "client.query-lines"
	report_client_data_url    = "client.data-url"
)

type Config struct {
	// Server is the search form endpoint.
	Server string
	// Catdir is a species directory file, empty means the embedded subset.
	Catdir string
}

type Client struct {
	server string
	catdir string
	http   *transport.Client
	tel    telemetry.API

	speciesOnce  sync.Once
	species      SpeciesTable
	speciesError error
}

func NewClient(cfg Config, http *transport.Client, tel telemetry.API) *Client {
	assert.NotNil(http)
	assert.NotNil(tel)
	assert.NotEmptyStr(cfg.Server)

	return &Client{
		server: cfg.Server,
		catdir: cfg.Catdir,
		http:   http,
		tel:    telemetry.NewScopedAPI("cdms", tel),
	}
}

// Species returns the species directory, it is loaded once.
func (c *Client) Species() (SpeciesTable, error) {
	c.speciesOnce.Do(func() {
		c.species, c.speciesError = LoadSpeciesTable(c.catdir)
		if c.speciesError != nil {
			c.tel.ReportBroken(report_client_species, c.speciesError, c.catdir)
			return
		}
		c.tel.ReportDebug(report_client_species, "loaded", len(c.species.Species))
	})
	return c.species, c.speciesError
}

// QueryPayload builds the form that would be posted for q without sending it.
func (c *Client) QueryPayload(q LineQuery) (catalogs.Payload, error) {
	if !q.ParseNameLocally {
		return q.Payload(nil)
	}
	species, err := c.Species()
	if err != nil {
		return nil, err
	}
	lookup := species.Lookup()
	return q.Payload(&lookup)
}

// dataURL resolves the table frame src against the server, relative
// sources live under the cgi-bin parent.
func (c *Client) dataURL(src string) (string, error) {
	parsed, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("frame src '%s': %w", src, err)
	}
	if parsed.IsAbs() {
		return src, nil
	}

	idx := strings.Index(c.server, "cgi-bin")
	if idx < 0 {
		return "", fmt.Errorf("server '%s' has no cgi-bin path to resolve '%s' against", c.server, src)
	}
	return c.server[:idx] + strings.TrimPrefix(src, "/"), nil
}

// FetchLines runs the search and returns the raw listing, following the
// frameset indirection when the service answers with one.
func (c *Client) FetchLines(ctx context.Context, q LineQuery) ([]byte, error) {
	payload, err := c.QueryPayload(q)
	if err != nil {
		return nil, err
	}

	body, err := c.http.PostForm(ctx, c.server, payload, !q.SkipCache)
	if err != nil {
		return nil, err
	}

	res, err := Classify(ctx, body)
	if err != nil {
		return nil, err
	}
	switch res := res.(type) {
	case DataResponse:
		return res.Body, nil
	case FrameResponse:
		endpoint, err := c.dataURL(res.Src)
		if err != nil {
			c.tel.ReportBroken(report_client_data_url, err)
			return nil, err
		}
		c.tel.ReportDebug(report_client_data_url, endpoint)
		return c.http.Get(ctx, endpoint, !q.SkipCache)
	default:
		panic(fmt.Sprintf("unknown response type %T", res))
	}
}

// QueryLines runs the search and parses the listing.
func (c *Client) QueryLines(ctx context.Context, q LineQuery) (LineTable, error) {
	body, err := c.FetchLines(ctx, q)
	if err != nil {
		return LineTable{}, err
	}
	table, err := ParseLines(ctx, body, q.Temperature)
	if err != nil {
		return LineTable{}, err
	}
	c.tel.ReportCount(report_client_query_lines, int64(len(table.Records)))
	return table, nil
}
