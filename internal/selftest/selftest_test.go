package selftest

import (
	"net/http"
	"strings"
	"testing"
)

func TestRunReportsFailuresIndependently(t *testing.T) {
	report := Run(http.NotFoundHandler(), Options{PDFEnabled: true})

	if report.OK() {
		t.Fatalf("expected failures against a handler without routes")
	}
	if len(report.Passed) != 0 {
		t.Fatalf("unexpected passes %v", report.Passed)
	}
	if len(report.Failed) != len(checks) {
		t.Fatalf("expected every check to run, got %d failures", len(report.Failed))
	}
	if report.Env["PDF_ENABLED"] != true {
		t.Fatalf("unexpected env %v", report.Env)
	}
}

func TestRunSkipsPDFChecksWhenDisabled(t *testing.T) {
	report := Run(http.NotFoundHandler(), Options{})

	for _, f := range report.Failed {
		if strings.HasPrefix(f, "pdf_roundtrip") {
			t.Fatalf("pdf_roundtrip should be skipped when pdf is disabled")
		}
	}
	if len(report.Failed) != len(checks)-1 {
		t.Fatalf("expected %d failures, got %d", len(checks)-1, len(report.Failed))
	}
}

func TestRunRecoversFromPanics(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	report := Run(boom, Options{})
	if len(report.Failed) == 0 {
		t.Fatalf("expected failures")
	}
	for _, f := range report.Failed {
		if !strings.Contains(f, "unexpected: boom") {
			t.Fatalf("expected recovered panic message, got %q", f)
		}
	}
}

func TestPDFRoundTripInspectsDownloadedBytes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"plan":{"picks":[{"name":"Vodka soda"}],"pdf_url":"/api/pdf/abc"}}`))
	})
	mux.HandleFunc("/api/pdf/abc", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.3 truncated"))
	})

	report := Run(mux, Options{PDFEnabled: true})

	var found string
	for _, f := range report.Failed {
		if strings.HasPrefix(f, "pdf_roundtrip:") {
			found = f
		}
	}
	if found == "" {
		t.Fatalf("expected pdf_roundtrip to fail on an unreadable pdf, passed=%v", report.Passed)
	}
	if !strings.Contains(found, "inspect pdf") {
		t.Fatalf("expected inspect error, got %q", found)
	}
}
