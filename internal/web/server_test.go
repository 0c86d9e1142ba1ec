package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/catalogconv/internal/config"
	"github.com/JonMunkholm/catalogconv/internal/core"
	_ "github.com/JonMunkholm/catalogconv/internal/core/platforms"
	"github.com/JonMunkholm/catalogconv/internal/tabular"
)

const shopifyCSV = "Title,Body (HTML),Vendor,Variant Price,Product Category\n" +
	"Cotton Tee,Soft tee,Acme,$9.99,Apparel > Shirts\n" +
	",Nameless,Acme,5,Home\n"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8080
	cfg.Upload.MaxFileSize = 1 << 20
	cfg.Security.EnableCSP = true
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	svc := core.NewService(nil, core.ServiceConfig{PreviewRows: 5})
	s := NewServer(svc, cfg, nil)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON response: %v\n%s", err, rec.Body.String())
	}
}

func analyze(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(s, uploadRequest(t, "shop.csv", shopifyCSV))
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		SessionID string `json:"session_id"`
		Platform  string `json:"platform"`
	}
	decode(t, rec, &res)
	if res.Platform != "shopify" {
		t.Errorf("platform = %q, want shopify", res.Platform)
	}
	return res.SessionID
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var health HealthResponse
	decode(t, rec, &health)
	if health.Status != "ok" || health.ReferenceLoaded {
		t.Errorf("health = %+v", health)
	}
	if health.Conversions.MaxConcurrent != core.DefaultMaxConcurrentConversions {
		t.Errorf("MaxConcurrent = %d", health.Conversions.MaxConcurrent)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing CSP header")
	}
}

func TestServer_Index(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Product Catalog Converter", "Shopify", "variant_attributes"} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestServer_Schema(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/schema", nil))

	var schema SchemaResponse
	decode(t, rec, &schema)
	if len(schema.Fields) != len(core.TargetFields) {
		t.Errorf("fields = %d, want %d", len(schema.Fields), len(core.TargetFields))
	}
	if len(schema.RequiredFields) != len(core.RequiredFields()) {
		t.Errorf("required = %v", schema.RequiredFields)
	}
	want := []string{"shopify", "amazon", "woocommerce"}
	if strings.Join(schema.Platforms, ",") != strings.Join(want, ",") {
		t.Errorf("platforms = %v, want %v", schema.Platforms, want)
	}
	for _, f := range schema.Fields {
		if f.Name == core.FieldPrice && f.Type != "numeric" {
			t.Errorf("price type = %q", f.Type)
		}
	}
}

func TestServer_Platforms(t *testing.T) {
	s := newTestServer(t, testConfig())
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/platforms", nil))

	var platforms []PlatformInfo
	decode(t, rec, &platforms)
	if len(platforms) != 3 {
		t.Fatalf("platforms = %d, want 3", len(platforms))
	}
	shopify := platforms[0]
	if shopify.Key != "shopify" || len(shopify.Fields[core.FieldName]) == 0 {
		t.Errorf("shopify = %+v", shopify)
	}
	if _, ok := shopify.Fields[core.CategorySourceKey]; ok {
		t.Error("category source leaked into field synonyms")
	}
	if len(shopify.CategorySources) == 0 {
		t.Error("missing category sources")
	}
}

func TestServer_Example(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/examples/shopify", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "shopify_example.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	sheet, err := tabular.ReadCSV(rec.Body)
	if err != nil {
		t.Fatalf("example unreadable: %v", err)
	}
	if platform, ok := core.DetectPlatform(sheet.Columns); !ok || platform != "shopify" {
		t.Errorf("example detected as %q", platform)
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/examples/etsy", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown platform status = %d, want 404", rec.Code)
	}
}

func TestServer_Workflow(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := analyze(t, s)

	// Convert with an override
	body := `{"mapping":{"fields":{"brand":""}}}`
	req := httptest.NewRequest(http.MethodPost, "/api/convert/"+id, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := do(s, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("convert status = %d: %s", rec.Code, rec.Body.String())
	}
	var conv struct {
		Report  core.ValidationReport `json:"report"`
		Stats   core.Stats            `json:"stats"`
		Preview [][]string            `json:"preview"`
	}
	decode(t, rec, &conv)
	if conv.Stats.RowsProcessed != 1 || conv.Stats.RowsDropped != 1 {
		t.Errorf("stats = %+v", conv.Stats)
	}
	if conv.Report.Valid {
		t.Error("clearing brand should make the report invalid")
	}
	if len(conv.Preview) != 1 {
		t.Errorf("preview rows = %d", len(conv.Preview))
	}

	// Convert again with no body accepts the suggestion
	rec = do(s, httptest.NewRequest(http.MethodPost, "/api/convert/"+id, nil))
	decode(t, rec, &conv)
	if !conv.Report.Valid {
		t.Errorf("report issues = %v", conv.Report.Issues)
	}

	// HTMX clients get the report fragment
	req = httptest.NewRequest(http.MethodPost, "/api/convert/"+id, nil)
	req.Header.Set("HX-Request", "true")
	rec = do(s, req)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("HTMX content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Cotton Tee") {
		t.Error("report fragment missing preview row")
	}

	// Downloads
	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/download/"+id, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "catalog_products_shop.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	sheet, err := tabular.ReadCSV(rec.Body)
	if err != nil || len(sheet.Rows) != 1 {
		t.Errorf("csv download: rows=%v err=%v", sheet, err)
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, "/api/download/"+id+"?format=xlsx", nil))
	if ct := rec.Header().Get("Content-Type"); ct != tabular.FormatXLSX.ContentType() {
		t.Errorf("xlsx content type = %q", ct)
	}
	if _, err := tabular.ReadXLSX(rec.Body); err != nil {
		t.Errorf("xlsx download unreadable: %v", err)
	}

	// Close
	rec = do(s, httptest.NewRequest(http.MethodDelete, "/api/session/"+id, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("close status = %d", rec.Code)
	}
	rec = do(s, httptest.NewRequest(http.MethodDelete, "/api/session/"+id, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second close status = %d, want 404", rec.Code)
	}
}

func TestServer_Errors(t *testing.T) {
	s := newTestServer(t, testConfig())
	id := analyze(t, s)

	jsonPost := func(path, body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   string
	}{
		{"analyze without multipart", httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("x")), http.StatusBadRequest, "FILE004"},
		{"analyze unsupported", uploadRequest(t, "products.pdf", shopifyCSV), http.StatusUnsupportedMediaType, "FILE006"},
		{"analyze empty", uploadRequest(t, "empty.csv", ""), http.StatusBadRequest, "FILE005"},
		{"download before convert", httptest.NewRequest(http.MethodGet, "/api/download/"+id, nil), http.StatusConflict, "SES002"},
		{"convert unknown session", jsonPost("/api/convert/nope", `{}`), http.StatusNotFound, "SES001"},
		{"convert invalid json", jsonPost("/api/convert/"+id, `{"mapping":`), http.StatusBadRequest, "MAP002"},
		{"convert unknown field", jsonPost("/api/convert/"+id, `{"mapping":{"fields":{"sku":"Variant SKU"}}}`), http.StatusBadRequest, "MAP001"},
		{"convert unknown platform", jsonPost("/api/convert/"+id, `{"platform":"etsy"}`), http.StatusBadRequest, "MAP003"},
		{"download bad format", httptest.NewRequest(http.MethodGet, "/api/download/"+id+"?format=pdf", nil), http.StatusBadRequest, "FILE006"},
		{"download unknown session", httptest.NewRequest(http.MethodGet, "/api/download/nope", nil), http.StatusNotFound, "SES001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(s, tt.req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp ErrorResponse
			decode(t, rec, &resp)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if resp.Message == "" {
				t.Error("missing user message")
			}
		})
	}
}

func TestServer_UploadTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 64
	s := newTestServer(t, cfg)

	rec := do(s, uploadRequest(t, "shop.csv", strings.Repeat(shopifyCSV, 10)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestServer_HTMXErrorFragment(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/convert/nope", nil)
	req.Header.Set("HX-Request", "true")
	rec := do(s, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "SES001") {
		t.Errorf("fragment missing error code: %s", rec.Body.String())
	}
}

func TestServer_APIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	tests := []struct {
		name       string
		path       string
		key        string
		wantStatus int
	}{
		{"missing key", "/api/schema", "", http.StatusUnauthorized},
		{"wrong key", "/api/schema", "guess", http.StatusForbidden},
		{"valid key", "/api/schema", "secret", http.StatusOK},
		{"health is public", "/healthz", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			if rec := do(s, req); rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Enabled = true
	cfg.Rate.RequestsPerMinute = 2
	cfg.Rate.UploadLimit = 1
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		if rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Another client is unaffected.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	if rec := do(s, req); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d", rec.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	svc := core.NewService(nil, core.ServiceConfig{})
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("catalogconv_active_sessions 0\n"))
	})
	s := NewServer(svc, testConfig(), metrics)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "catalogconv_active_sessions") {
		t.Errorf("metrics = %d %q", rec.Code, rec.Body.String())
	}

	s = newTestServer(t, testConfig())
	if rec := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil)); rec.Code != http.StatusNotFound {
		t.Errorf("metrics without handler status = %d, want 404", rec.Code)
	}
}
