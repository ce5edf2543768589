// Package web 內嵌前端頁面與靜態資源。
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// IndexTemplate 首頁模板名稱
const IndexTemplate = "index.html"

// Templates 解析內嵌模板
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// Static 靜態檔案，掛在 /static
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// 內嵌目錄固定存在
		panic(err)
	}
	return http.FS(sub)
}

// IndexData 首頁模板參數
type IndexData struct {
	AppName         string
	DefaultMaxKcal  int
	DefaultMaxCarbs float64
	MaxDrinkCount   int
}
