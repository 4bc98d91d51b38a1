package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"astrocat/internal/components/telemetry"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"
)

func newTestClient(t testing.TB, opts Options) (*Client, *httpmock.MockTransport) {
	t.Helper()
	mock := httpmock.NewMockTransport()
	opts.HTTPClient = &http.Client{Transport: mock}
	return New(opts, &telemetry.Recorder{}), mock
}

func TestGetCache(t *testing.T) {
	client, mock := newTestClient(t, Options{CacheTTL: time.Minute, CacheSize: 8})
	mock.RegisterResponder("GET", "https://example.org/tab.html", httpmock.NewStringResponder(200, "<pre>1</pre>"))

	for i := 0; i < 3; i++ {
		body, err := client.Get(context.Background(), "https://example.org/tab.html", true)
		require.NoError(t, err)
		require.Equal(t, "<pre>1</pre>", string(body))
	}
	require.Equal(t, 1, mock.GetTotalCallCount())

	_, err := client.Get(context.Background(), "https://example.org/tab.html", false)
	require.NoError(t, err)
	require.Equal(t, 2, mock.GetTotalCallCount())

	client.Purge()
	_, err = client.Get(context.Background(), "https://example.org/tab.html", true)
	require.NoError(t, err)
	require.Equal(t, 3, mock.GetTotalCallCount())
}

func TestPostFormCacheKeyIncludesForm(t *testing.T) {
	client, mock := newTestClient(t, Options{CacheTTL: time.Minute})
	mock.RegisterResponder("POST", "https://example.org/cgi-bin/search", func(req *http.Request) (*http.Response, error) {
		err := req.ParseForm()
		if err != nil {
			return nil, err
		}
		return httpmock.NewStringResponse(200, "temp="+req.PostForm.Get("temp")), nil
	})

	body, err := client.PostForm(context.Background(), "https://example.org/cgi-bin/search", url.Values{"temp": {"300"}}, true)
	require.NoError(t, err)
	require.Equal(t, "temp=300", string(body))

	body, err = client.PostForm(context.Background(), "https://example.org/cgi-bin/search", url.Values{"temp": {"0"}}, true)
	require.NoError(t, err)
	require.Equal(t, "temp=0", string(body))

	_, err = client.PostForm(context.Background(), "https://example.org/cgi-bin/search", url.Values{"temp": {"300"}}, true)
	require.NoError(t, err)
	require.Equal(t, 2, mock.GetTotalCallCount())
}

func TestStatusError(t *testing.T) {
	client, mock := newTestClient(t, Options{CacheTTL: time.Minute})
	mock.RegisterResponder("GET", "https://example.org/missing", httpmock.NewStringResponder(404, "not found"))

	_, err := client.Get(context.Background(), "https://example.org/missing", true)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, 404, statusErr.StatusCode)

	// failures are never cached
	_, err = client.Get(context.Background(), "https://example.org/missing", true)
	require.Error(t, err)
	require.Equal(t, 2, mock.GetTotalCallCount())
}

func TestTransportErrorPropagates(t *testing.T) {
	client, mock := newTestClient(t, Options{})
	boom := errors.New("connection reset")
	mock.RegisterResponder("GET", "https://example.org/down", httpmock.NewErrorResponder(boom))

	_, err := client.Get(context.Background(), "https://example.org/down", false)
	require.ErrorIs(t, err, boom)
}

// orderedForm encodes its pairs in the order given.
type orderedForm [][2]string

func (f orderedForm) Encode() string {
	pairs := make([]string, len(f))
	for i, p := range f {
		pairs[i] = url.QueryEscape(p[0]) + "=" + url.QueryEscape(p[1])
	}
	return strings.Join(pairs, "&")
}

func TestPostFormKeepsOrder(t *testing.T) {
	client, mock := newTestClient(t, Options{})

	var body, contentType string
	mock.RegisterResponder("POST", "https://example.org/cgi-bin/search", func(req *http.Request) (*http.Response, error) {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(raw)
		contentType = req.Header.Get("Content-Type")
		return httpmock.NewStringResponse(200, "ok"), nil
	})

	form := orderedForm{{"MinNu", "100"}, {"MaxNu", "120"}, {"Molecules", "028503 CO"}, {"Action", "Query"}}
	_, err := client.PostForm(context.Background(), "https://example.org/cgi-bin/search", form, false)
	require.NoError(t, err)
	require.Equal(t, "MinNu=100&MaxNu=120&Molecules=028503+CO&Action=Query", body)
	require.Equal(t, "application/x-www-form-urlencoded", contentType)
}
