// Package offline 在無法啟動伺服器時，把預設計畫寫成檔案。
package offline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"travel-drink-generator/internal/core/drink"
	"travel-drink-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// 輸出檔名
const (
	PlanFile   = "offline_plan.json"
	PDFFile    = "offline_plan.pdf"
	ReadmeFile = "offline_readme.txt"
)

// Document offline_plan.json 的內容
type Document struct {
	GeneratedAt string      `json:"generated_at"`
	Plan        *drink.Plan `json:"plan"`
}

// Writer 產生離線檔案
type Writer struct {
	dir      string
	engine   *drink.Engine
	renderer func(*drink.Plan) ([]byte, error)
	now      func() time.Time
}

// NewWriter renderer 為 nil 時不輸出 PDF
func NewWriter(dir string, engine *drink.Engine, renderer func(*drink.Plan) ([]byte, error)) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{
		dir:      dir,
		engine:   engine,
		renderer: renderer,
		now:      time.Now,
	}
}

// Write 以預設偏好計算計畫並寫出檔案，回傳已寫出的路徑
func (w *Writer) Write(prefs drink.PreferencesInput) ([]string, error) {
	plan, err := w.engine.ComputePlan(prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute offline plan: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create offline directory: %w", err)
	}

	doc := Document{
		GeneratedAt: w.now().UTC().Format(time.RFC3339Nano),
		Plan:        plan,
	}
	data, err := common.ToIndentedJSON(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode offline plan: %w", err)
	}

	written := make([]string, 0, 3)
	planPath := filepath.Join(w.dir, PlanFile)
	if err := os.WriteFile(planPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", PlanFile, err)
	}
	written = append(written, planPath)

	if w.renderer != nil {
		pdf, err := w.renderer(plan)
		if err != nil {
			// PDF 失敗不影響 JSON 與說明檔
			common.LogWarn("離線 PDF 產生失敗", zap.Error(err))
		} else {
			pdfPath := filepath.Join(w.dir, PDFFile)
			if err := os.WriteFile(pdfPath, pdf, 0644); err != nil {
				return written, fmt.Errorf("failed to write %s: %w", PDFFile, err)
			}
			written = append(written, pdfPath)
		}
	}

	readmePath := filepath.Join(w.dir, ReadmeFile)
	if err := os.WriteFile(readmePath, []byte(readme(written)), 0644); err != nil {
		return written, fmt.Errorf("failed to write %s: %w", ReadmeFile, err)
	}
	written = append(written, readmePath)

	common.LogInfo("已寫出離線檔案",
		zap.String("dir", w.dir),
		zap.Strings("files", written),
	)
	return written, nil
}

func readme(artifacts []string) string {
	names := make([]string, 0, len(artifacts))
	for _, p := range artifacts {
		names = append(names, filepath.Base(p))
	}

	var b strings.Builder
	b.WriteString("Offline mode was activated because a local web server could not be started.\n")
	b.WriteString("Artifacts created: " + strings.Join(names, ", ") + "\n")
	b.WriteString("Run `travel-drink-generator --host 0.0.0.0 --port 5000` on a host that allows servers to view the UI.\n")
	return b.String()
}
