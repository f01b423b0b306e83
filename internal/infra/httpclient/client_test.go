package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.DenyPrivateIPs = false      // test servers listen on loopback
	cfg.HostRequestsPerSecond = 0   // no politeness delays in tests
	return cfg
}

func TestGet_ReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := New(testConfig())
	body, resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGet_RotatesUserAgentAfterBlock(t *testing.T) {
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		if len(agents) == 1 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(testConfig())
	_, _, _ = c.Get(context.Background(), srv.URL)
	_, _, _ = c.Get(context.Background(), srv.URL)

	require.Len(t, agents, 2)
	assert.NotEqual(t, agents[0], agents[1], "UA should rotate after a 403")
}

func TestGet_UserAgentOverrideLeadsPool(t *testing.T) {
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.UserAgent = "CustomAgent/2.0"
	c := New(cfg)
	_, _, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "CustomAgent/2.0", agent)
}

func TestGet_BodySizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxBodySize = 1024
	c := New(cfg)
	_, _, err := c.Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}

func TestGet_RedirectCap(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxRedirects = 2
	c := New(cfg)
	_, _, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirects")
}

func TestGet_RejectsPrivateTargetsWhenEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.DenyPrivateIPs = true
	c := New(cfg)

	_, _, err := c.Get(context.Background(), "http://127.0.0.1:9/metadata")
	assert.Error(t, err)
}
