package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raushankrgupta/product-page-generator/ai"
	"github.com/raushankrgupta/product-page-generator/editor"
	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/raushankrgupta/product-page-generator/publish"
	"github.com/raushankrgupta/product-page-generator/settings"
	"github.com/raushankrgupta/product-page-generator/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	err error
}

func (f *fakeGenerator) Generate(_ context.Context, req models.GenerationRequest, status func(string)) (*models.ProductRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	status("Generating AI content...")
	status("✅ Product generated successfully!")
	rec := &models.ProductRecord{
		ID:            "rec-1",
		GeneratedCopy: models.GeneratedCopy{Title: "Desk Lamp", Benefits: []string{"bright"}},
		Language:      "fr",
	}
	rec.Normalize()
	return rec, nil
}

type fakeTranslator struct {
	err error
}

func (f *fakeTranslator) Translate(_ context.Context, _ ai.TranslatableFields, _ string) (*ai.Translation, error) {
	if f.err != nil {
		return nil, f.err
	}
	title := "Schreibtischlampe"
	return &ai.Translation{Title: &title}, nil
}

type testServer struct {
	handler  http.Handler
	settings *settings.MemoryStore
	ledger   *publish.MemoryLedger
	token    string
}

func newTestServer(t *testing.T, gen ProductGenerator, secret string) *testServer {
	t.Helper()
	logger := utils.DiscardLogger()
	store := settings.NewMemoryStore(models.Settings{})
	ledger := publish.NewMemoryLedger()
	publisher := publish.NewShopifyPublisher(store, nil, "", logger).WithLedger(ledger)
	session := editor.NewSession(&fakeTranslator{}, publisher, logger)

	h := NewHandlers(gen, session, store, ledger, logger)
	proxy := NewScrapeProxy("", "", logger)

	ts := &testServer{
		handler:  NewRouter(h, proxy, RouterOptions{JWTSecret: secret}, logger),
		settings: store,
		ledger:   ledger,
	}
	if secret != "" {
		token, err := utils.GenerateToken(secret, "tester", time.Hour)
		require.NoError(t, err)
		ts.token = token
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{}, "secret")
	ts.token = ""
	rec := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLanguages(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{}, "")
	rec := ts.do(t, http.MethodGet, "/api/languages", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Languages []models.Language `json:"languages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Languages, 5)
	assert.Equal(t, models.Language{Code: "fr", Name: "Français"}, body.Languages[0])
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{}, "secret")

	ts.token = ""
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/languages", "").Code)

	ts.token = "not-a-jwt"
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/languages", "").Code)

	other, err := utils.GenerateToken("other-secret", "tester", time.Hour)
	require.NoError(t, err)
	ts.token = other
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/languages", "").Code)

	ts.token, err = utils.GenerateToken("secret", "tester", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/languages", "").Code)
}

func TestProductLifecycle(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{}, "secret")

	rec := ts.do(t, http.MethodPost, "/api/products", `{"mode":"title","title":"Desk Lamp"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "rec-1", created.Product.ID)
	assert.Equal(t, []string{"Generating AI content...", "✅ Product generated successfully!"}, created.Progress)

	rec = ts.do(t, http.MethodPatch, "/api/products/rec-1", `{"field":"benefits","index":2,"value":"quiet"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var edited models.ProductRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &edited))
	assert.Equal(t, []string{"bright", "", "quiet"}, edited.Benefits)

	rec = ts.do(t, http.MethodPost, "/api/products/rec-1/translate", `{"language":"de"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var translated models.ProductRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &translated))
	assert.Equal(t, "Schreibtischlampe", translated.Title)
	assert.Equal(t, "de", translated.Language)

	rec = ts.do(t, http.MethodGet, "/api/products/rec-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Schreibtischlampe")
}

func TestProductErrors(t *testing.T) {
	tests := []struct {
		name       string
		gen        ProductGenerator
		method     string
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{name: "missing url", gen: &fakeGenerator{}, method: http.MethodPost, path: "/api/products", body: `{"mode":"url"}`, wantStatus: 400, wantError: "Please enter a product URL."},
		{name: "bad body", gen: &fakeGenerator{}, method: http.MethodPost, path: "/api/products", body: `{`, wantStatus: 400, wantError: "Invalid request body"},
		{name: "ai not configured", gen: &fakeGenerator{err: ai.ErrNotConfigured}, method: http.MethodPost, path: "/api/products", body: `{"mode":"title","title":"x"}`, wantStatus: 503},
		{name: "upstream failure", gen: &fakeGenerator{err: fmt.Errorf("quota exceeded")}, method: http.MethodPost, path: "/api/products", body: `{"mode":"title","title":"x"}`, wantStatus: 502, wantError: "quota exceeded"},
		{name: "unknown record", gen: &fakeGenerator{}, method: http.MethodGet, path: "/api/products/nope", wantStatus: 404, wantError: "product not found"},
		{name: "publish unknown record", gen: &fakeGenerator{}, method: http.MethodPost, path: "/api/products/nope/publish", wantStatus: 404},
		{name: "translate without language", gen: &fakeGenerator{}, method: http.MethodPost, path: "/api/products/nope/translate", body: `{}`, wantStatus: 400, wantError: "Please select a language."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.gen, "")
			rec := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeBody(t, rec)["error"])
			}
		})
	}
}

func TestEditUnknownField(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{}, "")
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/products", `{"mode":"title","title":"Desk Lamp"}`).Code)

	rec := ts.do(t, http.MethodPatch, "/api/products/rec-1", `{"field":"price","value":"9"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishWithoutSettings(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{}, "")
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/products", `{"mode":"title","title":"Desk Lamp"}`).Code)

	rec := ts.do(t, http.MethodPost, "/api/products/rec-1/publish", "")
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	assert.Equal(t, "Shopify settings are not configured. Please go to Settings.", decodeBody(t, rec)["error"])

	recent, _ := ts.ledger.Recent(context.Background(), 10)
	assert.Empty(t, recent)
}

func TestRecentProducts(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{}, "")
	require.NoError(t, ts.ledger.Record(context.Background(), models.PublishedProduct{Title: "Desk Lamp", RemoteID: 42}))

	rec := ts.do(t, http.MethodGet, "/api/products/recent?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"remoteId":42`)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/products/recent?limit=abc", "").Code)
}

func TestSettingsEndpoints(t *testing.T) {
	ts := newTestServer(t, &fakeGenerator{}, "")

	rec := ts.do(t, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"shopifyShopUrl":"","shopifyApiToken":"","configured":false}`, rec.Body.String())

	rec = ts.do(t, http.MethodPut, "/api/settings", `{"shopifyShopUrl":" my-store.myshopify.com ","shopifyApiToken":"shpat_abcdef1234"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"shopifyShopUrl":"my-store.myshopify.com","shopifyApiToken":"****1234","configured":true}`, rec.Body.String())

	stored, _ := ts.settings.Load(context.Background())
	assert.Equal(t, "shpat_abcdef1234", stored.APIToken)

	rec = ts.do(t, http.MethodPut, "/api/settings", `{"shopifyShopUrl":"new-store.myshopify.com","shopifyApiToken":"****1234"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	stored, _ = ts.settings.Load(context.Background())
	assert.Equal(t, models.Settings{ShopURL: "new-store.myshopify.com", APIToken: "shpat_abcdef1234"}, stored)
}
