// Package heasarc queries w3query.pl, the batch interface of the HEASARC
// multi-mission archive and of the mirrors that run the same software.
package heasarc

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"astrocat/internal/catalogs"
	"astrocat/internal/components/assert"
	"astrocat/internal/components/telemetry"
	"astrocat/internal/tabular"
	"astrocat/internal/transport"
	"astrocat/internal/units"
)

const (
	report_client_query         = "client.query"
	report_client_mission_cols  = "client.mission-cols"
	report_client_mission_list  = "client.mission-list"
	report_client_server_error  = "client.server-error"
	report_client_invalid_query = "client.invalid-query"
)

const (
	noRowsMessage = "No matching rows"
	missingBanner = "Table xxx does not seem to exist!\n\n\n\nAvailable tables:\n"
)

// ServerError is an error message the server answered with instead of a table.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "heasarc: " + e.Message
}

type Config struct {
	Server string
	// Defaults fill the options a query leaves unset.
	Defaults Options
}

type Client struct {
	server   string
	defaults Options
	http     *transport.Client
	tel    telemetry.API

	columnsMutex sync.Mutex
	columns      map[string][]string
}

func NewClient(cfg Config, http *transport.Client, tel telemetry.API) *Client {
	assert.NotNil(http)
	assert.NotNil(tel)
	assert.NotEmptyStr(cfg.Server)

	return &Client{
		server:   cfg.Server,
		defaults: cfg.Defaults,
		http:     http,
		tel:     telemetry.NewScopedAPI("heasarc", tel),
		columns: map[string][]string{},
	}
}

// serverError returns the first line starting with ERROR, if any.
func serverError(body []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "ERROR") {
			return &ServerError{Message: line}
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload catalogs.Payload, useCache bool) ([]byte, error) {
	body, err := c.http.PostForm(ctx, c.server, payload, useCache)
	if err != nil {
		return nil, err
	}
	err = serverError(body)
	if err != nil {
		c.tel.ReportWarning(report_client_server_error, err)
		return nil, err
	}
	return body, nil
}

// parseResult decodes a BatchDisplay response.
func parseResult(body []byte) (tabular.Table, error) {
	if bytes.Contains(body, []byte(noRowsMessage)) {
		return tabular.Table{}, fmt.Errorf("no matching rows: %w", catalogs.ErrNoData)
	}
	return tabular.ParseDelimited(string(body), '|')
}

// QueryPayload builds the form of a data query for entry, validating
// filters against the mission's columns when there are any.
func (c *Client) QueryPayload(ctx context.Context, entry string, opts Options) (catalogs.Payload, error) {
	opts, err := opts.withDefaults(c.defaults)
	if err != nil {
		return nil, err
	}
	payload, err := opts.payload(entry)
	if err != nil {
		return nil, err
	}
	if len(opts.Filters) == 0 {
		return payload, nil
	}

	columns, err := c.QueryMissionCols(ctx, opts.Mission)
	if err != nil {
		return nil, fmt.Errorf("fetch columns to validate filters: %w", err)
	}
	err = addFilters(&payload, opts.Filters, columns)
	if err != nil {
		c.tel.ReportWarning(report_client_invalid_query, err)
		return nil, err
	}
	return payload, nil
}

func (c *Client) query(ctx context.Context, entry string, opts Options) (tabular.Table, error) {
	payload, err := c.QueryPayload(ctx, entry, opts)
	if err != nil {
		return tabular.Table{}, err
	}
	body, err := c.post(ctx, payload, !opts.SkipCache)
	if err != nil {
		return tabular.Table{}, err
	}
	table, err := parseResult(body)
	if err != nil {
		return tabular.Table{}, err
	}
	c.tel.ReportCount(report_client_query, int64(table.Len()))
	return table, nil
}

func (c *Client) QueryObject(ctx context.Context, q ObjectQuery) (tabular.Table, error) {
	if strings.TrimSpace(q.Object) == "" {
		return tabular.Table{}, fmt.Errorf("no object name: %w", catalogs.ErrInvalidQuery)
	}
	return c.query(ctx, q.Object, q.Options)
}

func (c *Client) QueryRegion(ctx context.Context, q RegionQuery) (tabular.Table, error) {
	if strings.TrimSpace(q.Position) == "" {
		return tabular.Table{}, fmt.Errorf("no position: %w", catalogs.ErrInvalidQuery)
	}
	return c.query(ctx, q.Position, q.Options)
}

// QueryMissionCols returns the column names of a mission. They are
// discovered with a whole-sky query for a single row, and remembered for
// the lifetime of the client.
func (c *Client) QueryMissionCols(ctx context.Context, mission string) ([]string, error) {
	key := strings.ToLower(mission)

	c.columnsMutex.Lock()
	cached, ok := c.columns[key]
	c.columnsMutex.Unlock()
	if ok {
		return cached, nil
	}

	radius := units.FromDegrees(361)
	payload, err := Options{
		Mission:   mission,
		Fields:    FieldsAll,
		Radius:    &radius,
		ResultMax: 1,
	}.payload("0.0 0.0")
	if err != nil {
		return nil, err
	}
	body, err := c.post(ctx, payload, true)
	if err != nil {
		return nil, err
	}
	table, err := parseResult(body)
	if err != nil {
		c.tel.ReportWarning(report_client_mission_cols, mission, err)
		return nil, err
	}
	columns := table.Names()

	c.columnsMutex.Lock()
	c.columns[key] = columns
	c.columnsMutex.Unlock()
	return columns, nil
}

// QueryMissionList returns the tables the server knows about, it asks for a
// table that does not exist and parses the listing of the error page.
func (c *Client) QueryMissionList(ctx context.Context) (tabular.Table, error) {
	var payload catalogs.Payload
	payload.Add("Entry", "none")
	payload.Add("mission", "xxx")
	payload.Add("displaymode", "BatchDisplay")

	body, err := c.http.PostForm(ctx, c.server, payload, true)
	if err != nil {
		return tabular.Table{}, err
	}
	text := strings.ReplaceAll(string(body), "\r\n", "\n")
	text = strings.Replace(text, missingBanner, "", 1)

	table, err := tabular.ParseTwoLine(text, tabular.TwoLineOptions{
		PositionChar: '-',
		Delimiter:    '+',
		DropFooter:   true,
	})
	if err != nil {
		c.tel.ReportBroken(report_client_mission_list, err)
		return tabular.Table{}, err
	}
	return table, nil
}
