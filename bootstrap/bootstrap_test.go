package bootstrap

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raushankrgupta/product-page-generator/config"
	"github.com/raushankrgupta/product-page-generator/settings"
	"github.com/raushankrgupta/product-page-generator/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		ProxyEndpoint:     "http://127.0.0.1:1/api/scrape",
		ProxyPageTimeout:  time.Second,
		ProxyImageTimeout: time.Second,
		RetryMax:          0,
		RetryInitialDelay: time.Millisecond,
		RetryFactor:       2,
		DefaultLanguage:   "fr",
		SessionCapacity:   10,
		ShopifyAPIVersion: "2024-04",
		SettingsBackend:   "file",
		SettingsFile:      filepath.Join(t.TempDir(), "settings.json"),
		LedgerBackend:     "memory",
	}
}

func TestNewWithoutGemini(t *testing.T) {
	app, err := New(context.Background(), testConfig(t), utils.DiscardLogger())
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.IsType(t, &settings.FileStore{}, app.Settings)

	h := app.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(`{"mode":"title","title":"Desk Lamp"}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scrape", bytes.NewBufferString(`{"url":"https://www.aliexpress.com/item/1.html"}`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "ScraperAPI key is not configured on the server.")
}

func TestNewRequiresTokenWhenSecretSet(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = "secret"
	app, err := New(context.Background(), cfg, utils.DiscardLogger())
	require.NoError(t, err)
	defer app.Close(context.Background())

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := proxyTokenSource("secret")()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Nil(t, proxyTokenSource(""))
}

func TestServeDrainsRequestsBeforeClose(t *testing.T) {
	app, err := New(context.Background(), testConfig(t), utils.DiscardLogger())
	require.NoError(t, err)

	var finished, closed, closedAfterDrain atomic.Bool
	app.closers = append(app.closers, func(context.Context) error {
		closedAfterDrain.Store(finished.Load())
		closed.Store(true)
		return nil
	})

	started := make(chan struct{})
	release := make(chan struct{})
	server := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		finished.Store(true)
		w.WriteHeader(http.StatusOK)
	})}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- app.Serve(ctx, server, ln, 5*time.Second)
	}()

	status := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			status <- 0
			return
		}
		resp.Body.Close()
		status <- resp.StatusCode
	}()

	<-started
	cancel()
	time.Sleep(100 * time.Millisecond)
	assert.False(t, closed.Load())

	close(release)
	assert.NoError(t, <-served)
	assert.Equal(t, http.StatusOK, <-status)
	assert.True(t, closed.Load())
	assert.True(t, closedAfterDrain.Load())
}
