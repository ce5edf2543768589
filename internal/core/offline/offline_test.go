package offline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"travel-drink-generator/internal/core/drink"
	"travel-drink-generator/internal/core/render"
	"travel-drink-generator/internal/pkg/common"
)

func newEngine() *drink.Engine {
	return drink.NewEngine(drink.DefaultCatalog(), drink.DefaultLibrary())
}

func TestWriteAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, newEngine(), render.PDF)
	w.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	files, err := w.Write(drink.PreferencesInput{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %v", files)
	}

	raw, err := os.ReadFile(filepath.Join(dir, PlanFile))
	if err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := common.ParseJSONBytes(raw, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.GeneratedAt != "2024-05-01T12:00:00Z" {
		t.Fatalf("unexpected timestamp %q", doc.GeneratedAt)
	}
	if doc.Plan == nil || len(doc.Plan.Picks) != 1 || doc.Plan.Picks[0].Name != "Gin and diet tonic" {
		t.Fatalf("unexpected plan %+v", doc.Plan)
	}
	if !strings.Contains(string(raw), "\n  \"plan\"") {
		t.Fatalf("expected indented json")
	}

	pdf, err := os.ReadFile(filepath.Join(dir, PDFFile))
	if err != nil {
		t.Fatal(err)
	}
	summary, err := render.Inspect(pdf)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(summary.Text, "Gin and diet tonic") {
		t.Fatalf("pdf does not mention the pick")
	}

	notes, err := os.ReadFile(filepath.Join(dir, ReadmeFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(notes), "Artifacts created: offline_plan.json, offline_plan.pdf\n") {
		t.Fatalf("unexpected readme %q", notes)
	}
}

func TestWriteWithoutPDF(t *testing.T) {
	dir := t.TempDir()

	files, err := NewWriter(dir, newEngine(), nil).Write(drink.PreferencesInput{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected json and readme only, got %v", files)
	}
	if _, err := os.Stat(filepath.Join(dir, PDFFile)); !os.IsNotExist(err) {
		t.Fatalf("pdf should not exist")
	}
}

func TestWriteRenderFailureKeepsJSON(t *testing.T) {
	dir := t.TempDir()
	failing := func(*drink.Plan) ([]byte, error) { return nil, errors.New("font missing") }

	files, err := NewWriter(dir, newEngine(), failing).Write(drink.PreferencesInput{})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected json and readme, got %v", files)
	}
}

func TestWriteNoCandidates(t *testing.T) {
	_, err := NewWriter(t.TempDir(), newEngine(), nil).Write(drink.PreferencesInput{Categories: []string{"cider"}})
	if !errors.Is(err, drink.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}
