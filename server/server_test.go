package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/icdmap"
	"github.com/poiesic/icdmap/config"
	"github.com/poiesic/icdmap/embedding"
	"github.com/poiesic/icdmap/icd10"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         8420,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			BodyLimit:    1 << 20,
		},
		Database: config.DatabaseConfig{Path: "icdmap.db"},
		Search: config.SearchConfig{
			TopK:            5,
			CoherenceWeight: 0.25,
			CandidateLimit:  50,
		},
		Cache:    config.CacheConfig{Enabled: true, MaxEntries: 100, TTL: time.Minute},
		Metrics:  config.MetricsConfig{Enabled: true},
		LogLevel: "info",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// builtIndex returns an in-memory index over the builtin catalog, trained
// with a small fast embedding so tests stay quick.
func builtIndex(t *testing.T) *icdmap.Index {
	t.Helper()

	idx, err := icdmap.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	trainer, err := embedding.NewTrainer(
		embedding.WithDimensions(16),
		embedding.WithWalks(2, 8),
		embedding.WithEpochs(2),
		embedding.WithWorkers(1),
		embedding.WithSeed(7),
	)
	require.NoError(t, err)

	_, err = idx.Build(context.Background(), icd10.SourceBuiltin, icd10.BuiltinCatalog(), trainer, nil, io.Discard)
	require.NoError(t, err)
	return idx
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	srv, err := New(testConfig(), builtIndex(t), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		if srv.cache != nil {
			srv.cache.close()
		}
	})
	return srv
}

func testGet(t *testing.T, srv *Server, path string) *http.Response {
	t.Helper()

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func TestNew(t *testing.T) {
	t.Run("requires a config", func(t *testing.T) {
		srv, err := New(nil, builtIndex(t), quietLogger())
		assert.ErrorIs(t, err, ErrConfigRequired)
		assert.Nil(t, srv)
	})

	t.Run("requires an index", func(t *testing.T) {
		srv, err := New(testConfig(), nil, quietLogger())
		assert.ErrorIs(t, err, ErrIndexRequired)
		assert.Nil(t, srv)
	})

	t.Run("skips the cache when disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.Cache.Enabled = false

		srv, err := New(cfg, builtIndex(t), quietLogger())
		require.NoError(t, err)
		assert.Nil(t, srv.cache)
	})
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	resp := testGet(t, srv, healthPath)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["time"])
}

func TestServer_IndexPage(t *testing.T) {
	srv := newTestServer(t)

	resp := testGet(t, srv, "/")
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ICD-10-CM")
}

func TestServer_RequestID(t *testing.T) {
	srv := newTestServer(t)

	t.Run("assigns an id", func(t *testing.T) {
		resp := testGet(t, srv, healthPath)
		defer resp.Body.Close()
		assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
	})

	t.Run("honors a caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, healthPath, nil)
		req.Header.Set(requestIDHeader, "test-123")

		resp, err := srv.app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "test-123", resp.Header.Get(requestIDHeader))
	})
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(t)

	// One request first so the counters have series to expose.
	resp := testGet(t, srv, healthPath)
	resp.Body.Close()

	resp = testGet(t, srv, metricsPath)
	defer resp.Body.Close()
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "icdmap_requests_total")
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false

	srv, err := New(cfg, builtIndex(t), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { srv.cache.close() })

	resp := testGet(t, srv, metricsPath)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
