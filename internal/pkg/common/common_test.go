package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCustomErrorIsByCode(t *testing.T) {
	wrapped := ErrNoCandidates.Wrap(errors.New("empty pool"))
	if !errors.Is(wrapped, ErrNoCandidates) {
		t.Fatalf("expected wrapped error to match by code")
	}
	if errors.Is(wrapped, ErrPDFExpired) {
		t.Fatalf("different codes must not match")
	}
	if !strings.Contains(wrapped.Error(), "empty pool") {
		t.Fatalf("expected cause in message, got %q", wrapped.Error())
	}
}

func TestAsCustomError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"custom", ErrPDFExpired, http.StatusNotFound, "PDF_EXPIRED"},
		{"validation", NewValidationError("drink_count must be a number"), http.StatusBadRequest, ErrCodeInvalidRequest},
		{"plain", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ce := AsCustomError(tc.err)
			if ce.Status != tc.status || ce.Code != tc.code {
				t.Fatalf("got %d/%s, want %d/%s", ce.Status, ce.Code, tc.status, tc.code)
			}
		})
	}
}

func TestParseJSONBytesRejectsTrailingData(t *testing.T) {
	var v struct {
		MaxKcal float64 `json:"max_kcal"`
	}
	if err := ParseJSONBytes([]byte(`{"max_kcal": 120}`), &v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.MaxKcal != 120 {
		t.Fatalf("expected 120, got %v", v.MaxKcal)
	}
	if err := ParseJSONBytes([]byte(`{"max_kcal": 1} {}`), &v); !errors.Is(err, ErrExtraJSON) {
		t.Fatalf("expected extra data error, got %v", err)
	}
}

func TestWriteErrorResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/pdf/missing", nil)

	WriteErrorResponse(c, ErrPDFExpired)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var body ErrorResponse
	if err := ParseJSONBytes(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "PDF expired. Regenerate to get a new link." || body.Code != "PDF_EXPIRED" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestConciseModeFiltersInfo(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Logger = zap.New(core)
	defer func() { Logger = zap.NewNop() }()
	LogMode = "concise"
	defer func() { LogMode = "" }()

	LogInfo("計畫已產生")
	LogInfo("請求完成", zap.String("pdf", "binary"), zap.Int("status", 200))
	LogWarn("快取已滿")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "請求完成" {
		t.Fatalf("unexpected first entry %q", entries[0].Message)
	}
	for _, f := range entries[0].Context {
		if f.Key == "pdf" {
			t.Fatalf("binary field should be filtered")
		}
	}
}

func TestGenerateArtifactKey(t *testing.T) {
	a, b := GenerateArtifactKey(), GenerateArtifactKey()
	if len(a) != 32 || strings.Contains(a, "-") {
		t.Fatalf("unexpected key %q", a)
	}
	if a == b {
		t.Fatalf("keys must be unique")
	}
}
