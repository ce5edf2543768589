package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"travel-drink-generator/internal/api/middleware"
	"travel-drink-generator/internal/core/artifact"
	"travel-drink-generator/internal/core/drink"
	"travel-drink-generator/internal/core/planner"
	"travel-drink-generator/internal/infrastructure/config"
	"travel-drink-generator/internal/pkg/common"
	"travel-drink-generator/internal/selftest"

	"github.com/gin-gonic/gin"
)

func testConfig() *config.Config {
	return &config.Config{
		App:       config.AppConfig{Name: "Travel Drink Generator", Version: "test"},
		Server:    config.ServerConfig{MaxBodyBytes: 64 << 10},
		Cache:     config.CacheConfig{Backend: config.CacheBackendMemory, MaxSize: 32, TTL: time.Minute},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Security:  config.SecurityConfig{AllowedOrigins: []string{"https://app.gohighlevel.com"}},
		PDF:       config.PDFConfig{Enabled: true},
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := artifact.NewMemoryStore(cfg.Cache)
	svc := planner.NewService(drink.NewEngine(drink.DefaultCatalog(), drink.DefaultLibrary()), store, cfg.PDF.Enabled)
	t.Cleanup(func() { _ = svc.Close() })

	router, err := SetupRouter(cfg, svc)
	if err != nil {
		t.Fatalf("setup router: %v", err)
	}
	return router
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type generateResponse struct {
	Plan struct {
		Picks        []drink.Profile    `json:"picks"`
		Pacing       []drink.PacingStep `json:"pacing"`
		Recovery     []string           `json:"recovery"`
		FallbackUsed bool               `json:"fallback_used"`
		Advice       *drink.Advice      `json:"advice"`
		PDFURL       *string            `json:"pdf_url"`
	} `json:"plan"`
}

func decodePlan(t *testing.T, w *httptest.ResponseRecorder) generateResponse {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp generateResponse
	if err := common.ParseJSONBytes(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestGenerateDefaults(t *testing.T) {
	r := newTestRouter(t, testConfig())

	for _, body := range []string{"", "{}"} {
		resp := decodePlan(t, do(r, http.MethodPost, "/api/generate", body))
		if len(resp.Plan.Picks) != 1 || resp.Plan.Picks[0].Name != "Gin and diet tonic" {
			t.Fatalf("body %q: unexpected picks %+v", body, resp.Plan.Picks)
		}
		if resp.Plan.FallbackUsed || resp.Plan.Advice != nil || resp.Plan.PDFURL != nil {
			t.Fatalf("unexpected plan flags %+v", resp.Plan)
		}
		if len(resp.Plan.Pacing) != 1 || len(resp.Plan.Recovery) != 4 {
			t.Fatalf("unexpected pacing/recovery")
		}
	}
}

func TestGenerateFallbackWithAdvice(t *testing.T) {
	r := newTestRouter(t, testConfig())

	resp := decodePlan(t, do(r, http.MethodPost, "/api/generate", `{"categories":["beer"],"max_kcal":10,"max_carbs":0}`))
	if !resp.Plan.FallbackUsed || resp.Plan.Advice == nil {
		t.Fatalf("expected fallback with advice")
	}
	if resp.Plan.Picks[0].Name != "Skinny mule" {
		t.Fatalf("unexpected top pick %s", resp.Plan.Picks[0].Name)
	}
	if resp.Plan.Advice.Message != drink.FallbackMessage {
		t.Fatalf("unexpected advice message %q", resp.Plan.Advice.Message)
	}
}

func TestGenerateErrors(t *testing.T) {
	r := newTestRouter(t, testConfig())

	cases := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed_json", `{"drink_count":`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"wrong_type", `{"drink_count":"two"}`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"trailing_data", `{} {}`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"no_candidates", `{"categories":["spirit"],"spirits":["mezcal"]}`, http.StatusUnprocessableEntity, common.ErrCodeNoCandidates},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/generate", tc.body)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, w.Code, w.Body.String())
			}
			var body common.ErrorResponse
			if err := common.ParseJSONBytes(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, body.Code)
			}
		})
	}
}

func TestGenerateAcceptsWholeFloatDrinkCount(t *testing.T) {
	r := newTestRouter(t, testConfig())

	resp := decodePlan(t, do(r, http.MethodPost, "/api/generate", `{"drink_count":2.0}`))
	if len(resp.Plan.Picks) != 2 || len(resp.Plan.Pacing) != 2 {
		t.Fatalf("expected two picks, got %d", len(resp.Plan.Picks))
	}

	w := do(r, http.MethodPost, "/api/generate", `{"drink_count":"two"}`)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "drink_count must be an integer") {
		t.Fatalf("expected clear validation message, got %d %s", w.Code, w.Body.String())
	}
}

func TestPDFRoundTrip(t *testing.T) {
	r := newTestRouter(t, testConfig())

	resp := decodePlan(t, do(r, http.MethodPost, "/api/generate", `{"want_pdf":true}`))
	if resp.Plan.PDFURL == nil {
		t.Fatalf("expected pdf url")
	}

	w := do(r, http.MethodGet, *resp.Plan.PDFURL, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `inline; filename="drink_plan.pdf"` {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF-") {
		t.Fatalf("expected pdf body")
	}
}

func TestPDFExpired(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := do(r, http.MethodGet, "/api/pdf/plan_1700000000.pdf", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body common.ErrorResponse
	if err := common.ParseJSONBytes(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "PDF expired. Regenerate to get a new link." {
		t.Fatalf("unexpected error %q", body.Error)
	}
}

func TestHealthTipsAndIndex(t *testing.T) {
	r := newTestRouter(t, testConfig())

	var tips struct {
		Tips []string `json:"tips"`
	}
	w := do(r, http.MethodGet, "/api/health-tips", "")
	if err := common.ParseJSONBytes(w.Body.Bytes(), &tips); err != nil || len(tips.Tips) != 5 {
		t.Fatalf("expected 5 tips, got %v (%v)", tips.Tips, err)
	}

	w = do(r, http.MethodGet, "/", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<title>Travel Drink Generator</title>") {
		t.Fatalf("unexpected index page: %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Content-Security-Policy"), "frame-ancestors 'self'") {
		t.Fatalf("expected csp header on index")
	}

	w = do(r, http.MethodGet, "/static/app.js", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/api/generate") {
		t.Fatalf("expected static script, got %d", w.Code)
	}
}

func TestSelfTestEndpoint(t *testing.T) {
	r := newTestRouter(t, testConfig())

	w := do(r, http.MethodGet, "/api/selftest", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var report selftest.Report
	if err := common.ParseJSONBytes(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Failed) != 0 {
		t.Fatalf("self-test failures: %v", report.Failed)
	}
	if len(report.Passed) != 11 {
		t.Fatalf("expected 11 passing checks, got %v", report.Passed)
	}
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t, testConfig())

	for _, path := range []string{"/health", "/ready", "/live", "/metrics"} {
		if w := do(r, http.MethodGet, path, ""); w.Code != http.StatusOK {
			t.Fatalf("%s returned %d", path, w.Code)
		}
	}

	w := do(r, http.MethodGet, "/ready", "")
	if !strings.Contains(w.Body.String(), `"status":"ready"`) {
		t.Fatalf("unexpected ready body %s", w.Body.String())
	}
}

func TestGuardedRouterReplaysDuplicateSubmit(t *testing.T) {
	cfg := testConfig()
	cfg.DedupWindow = time.Minute
	r := newTestRouter(t, cfg)

	first := do(r, http.MethodPost, "/api/generate", `{"drink_count":2,"want_pdf":true}`)
	if first.Code != http.StatusOK {
		t.Fatalf("first request: %d", first.Code)
	}
	second := do(r, http.MethodPost, "/api/generate", `{"drink_count":2,"want_pdf":true}`)
	if second.Code != http.StatusOK {
		t.Fatalf("expected duplicate to be answered, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() || second.Header().Get(middleware.ReplayHeader) != "true" {
		t.Fatalf("expected the first response to be replayed")
	}
}

func TestGuardedRouterRateLimits(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 1, Window: time.Hour, Burst: 1}
	r := newTestRouter(t, cfg)

	if w := do(r, http.MethodGet, "/api/health-tips", ""); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/health-tips", ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/live", ""); w.Code != http.StatusOK {
		t.Fatalf("health routes are not rate limited, got %d", w.Code)
	}
}

func TestUnknownRoutesAndMethods(t *testing.T) {
	r := newTestRouter(t, testConfig())

	cases := []struct {
		name   string
		method string
		path   string
		status int
		code   string
	}{
		{"unknown_path", http.MethodGet, "/api/recipes", http.StatusNotFound, common.ErrCodeNotFound},
		{"get_generate", http.MethodGet, "/api/generate", http.StatusMethodNotAllowed, common.ErrCodeMethodNotAllowed},
		{"post_health_tips", http.MethodPost, "/api/health-tips", http.StatusMethodNotAllowed, common.ErrCodeMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, tc.method, tc.path, "")
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			var body common.ErrorResponse
			if err := common.ParseJSONBytes(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tc.code {
				t.Fatalf("expected code %s, got %s", tc.code, body.Code)
			}
		})
	}
}
