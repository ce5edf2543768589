package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// Summary 讀回 PDF 的頁數與純文字
type Summary struct {
	Pages int
	Text  string
}

// Inspect 解析 PDF，自我測試用來確認下載的檔案內容
func Inspect(data []byte) (*Summary, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("inspect pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("inspect pdf: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return nil, fmt.Errorf("inspect pdf: %w", err)
	}
	return &Summary{Pages: reader.NumPage(), Text: buf.String()}, nil
}
