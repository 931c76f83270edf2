package httpclient

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"OddsRecorder/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestClient_GzipAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))
		assert.Equal(t, "vi", r.Header.Get("lng"))
		assert.Equal(t, "custom", r.Header.Get("accept"))
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = io.WriteString(gz, `[[],[]]`)
		_ = gz.Close()
	}))
	defer srv.Close()

	client := NewHTTPClient(&config.FeedConfig{
		Timeout: 5,
		Headers: map[string]string{"lng": "vi", "accept": "application/json"},
	}, quietLogger())

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("accept", "custom")
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `[[],[]]`, string(body))
	assert.Empty(t, resp.Header.Get("Content-Encoding"))
}

func TestClient_PlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	client := NewHTTPClient(&config.FeedConfig{Proxy: "://bad"}, quietLogger())
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestCompressedTransport_DoesNotMutateRequest(t *testing.T) {
	var seen string
	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Get("Accept-Encoding")
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("ok")),
		}, nil
	})

	// 未配置请求头时 headerTransport 不会克隆请求
	client := &http.Client{Transport: &headerTransport{
		transport: &compressedTransport{transport: base, logger: quietLogger()},
	}}
	req, err := http.NewRequest(http.MethodGet, "http://feed.invalid/getEvent", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "gzip", seen)
	assert.Empty(t, req.Header.Get("Accept-Encoding"))
}
