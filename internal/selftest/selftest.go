// Package selftest 以實際 HTTP 路由跑一輪端到端檢查，供 --test 與 /api/selftest 使用。
package selftest

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"travel-drink-generator/internal/core/drink"
	"travel-drink-generator/internal/core/render"
	"travel-drink-generator/internal/pkg/common"
)

// Report 自我測試結果
type Report struct {
	Passed []string       `json:"passed"`
	Failed []string       `json:"failed"`
	Env    map[string]any `json:"env"`
}

// OK 是否全部通過
func (r Report) OK() bool {
	return len(r.Failed) == 0
}

// Options 影響案例選擇的環境
type Options struct {
	PDFEnabled bool
}

type planPayload struct {
	Picks        []drink.Profile `json:"picks"`
	FallbackUsed bool            `json:"fallback_used"`
	Advice       *drink.Advice   `json:"advice"`
	PDFURL       *string         `json:"pdf_url"`
}

type planEnvelope struct {
	Plan planPayload `json:"plan"`
}

type check struct {
	name string
	run  func(c *client) error
	// 只在 PDF 可用時執行
	needsPDF bool
}

var checks = []check{
	{name: "basic_generate", run: func(c *client) error {
		plan, err := c.generate(`{}`)
		if err != nil {
			return err
		}
		if len(plan.Picks) == 0 {
			return errors.New("expected at least one pick")
		}
		return nil
	}},
	{name: "strict_filter_fallback", run: func(c *client) error {
		plan, err := c.generate(`{"categories": ["beer"], "max_kcal": 60, "max_carbs": 0}`)
		if err != nil {
			return err
		}
		if len(plan.Picks) == 0 {
			return errors.New("fallback should still return picks")
		}
		return nil
	}},
	{name: "pdf_key_present", run: func(c *client) error {
		var raw struct {
			Plan map[string]any `json:"plan"`
		}
		if err := c.postJSON("/api/generate", `{"want_pdf": true}`, &raw); err != nil {
			return err
		}
		if _, ok := raw.Plan["pdf_url"]; !ok {
			return errors.New("plan is missing pdf_url")
		}
		return nil
	}},
	{name: "health_tips", run: func(c *client) error {
		var body struct {
			Tips []string `json:"tips"`
		}
		if err := c.getJSON("/api/health-tips", &body); err != nil {
			return err
		}
		if len(body.Tips) == 0 {
			return errors.New("expected tips")
		}
		return nil
	}},
	{name: "pdf_roundtrip", needsPDF: true, run: func(c *client) error {
		plan, err := c.generate(`{"want_pdf": true, "drink_count": 2}`)
		if err != nil {
			return err
		}
		if plan.PDFURL == nil || *plan.PDFURL == "" {
			return errors.New("expected pdf_url")
		}
		w := c.do(http.MethodGet, *plan.PDFURL, "")
		if w.Code != http.StatusOK {
			return fmt.Errorf("pdf download returned %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
			return fmt.Errorf("unexpected content type %q", ct)
		}
		summary, err := render.Inspect(w.Body.Bytes())
		if err != nil {
			return err
		}
		if summary.Pages < 1 || !strings.Contains(summary.Text, render.Title) {
			return errors.New("downloaded pdf is missing the plan title")
		}
		for _, p := range plan.Picks {
			if !strings.Contains(summary.Text, p.Name) {
				return fmt.Errorf("downloaded pdf is missing pick %s", p.Name)
			}
		}
		return nil
	}},
	{name: "gluten_free_filter", run: func(c *client) error {
		plan, err := c.generate(`{"categories": ["beer", "spirit", "cocktail"], "gluten_free_only": true}`)
		if err != nil {
			return err
		}
		for _, p := range plan.Picks {
			if !p.GlutenFree {
				return fmt.Errorf("%s is not gluten-free", p.Name)
			}
		}
		return nil
	}},
	{name: "mocktail_abv_zero", run: func(c *client) error {
		plan, err := c.generate(`{"categories": ["mocktail"], "max_kcal": 50}`)
		if err != nil {
			return err
		}
		if len(plan.Picks) == 0 {
			return errors.New("expected mocktail picks")
		}
		for _, p := range plan.Picks {
			if p.ABVPct >= 0.5 {
				return fmt.Errorf("%s has abv %.1f", p.Name, p.ABVPct)
			}
		}
		return nil
	}},
	{name: "index_html", run: func(c *client) error {
		w := c.do(http.MethodGet, "/", "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<title") {
			return fmt.Errorf("index returned %d without a title", w.Code)
		}
		return nil
	}},
	{name: "fallback_banner_and_suggestions", run: func(c *client) error {
		plan, err := c.generate(`{"categories": ["beer"], "max_kcal": 60, "max_carbs": 0, "allow_carbonation": false, "gluten_free_only": true}`)
		if err != nil {
			return err
		}
		if !plan.FallbackUsed || plan.Advice == nil {
			return errors.New("expected fallback with advice")
		}
		return nil
	}},
	{name: "spirit_filtering_vodka", run: func(c *client) error {
		plan, err := c.generate(`{"categories": ["spirit", "cocktail"], "spirits": ["vodka"]}`)
		if err != nil {
			return err
		}
		if len(plan.Picks) == 0 {
			return errors.New("expected vodka picks")
		}
		for _, p := range plan.Picks {
			if !strings.Contains(strings.ToLower(p.Name), "vodka") && !strings.Contains(strings.ToLower(p.Order), "vodka") {
				return fmt.Errorf("spirit filter should favor vodka recipes, got %s", p.Name)
			}
		}
		return nil
	}},
	{name: "defaults_enforced", run: func(c *client) error {
		plan, err := c.generate(`{}`)
		if err != nil {
			return err
		}
		for _, p := range plan.Picks {
			if p.Kcal > drink.DefaultMaxKcal || p.CarbsG > drink.DefaultMaxCarbs {
				return fmt.Errorf("defaults (kcal<=130, carbs<=8) not enforced for %s", p.Name)
			}
		}
		return nil
	}},
}

// Run 依序執行所有檢查，單一失敗不會中斷其餘案例
func Run(h http.Handler, opts Options) Report {
	report := Report{
		Passed: []string{},
		Failed: []string{},
		Env:    map[string]any{"PDF_ENABLED": opts.PDFEnabled},
	}
	c := &client{handler: h}

	for _, chk := range checks {
		if chk.needsPDF && !opts.PDFEnabled {
			continue
		}
		if err := safeRun(chk, c); err != nil {
			report.Failed = append(report.Failed, chk.name+": "+err.Error())
			continue
		}
		report.Passed = append(report.Passed, chk.name)
	}
	return report
}

func safeRun(chk check, c *client) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected: %v", r)
		}
	}()
	return chk.run(c)
}

// client 直接呼叫 handler，不經過網路
type client struct {
	handler http.Handler
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	return w
}

func (c *client) postJSON(path, body string, out any) error {
	w := c.do(http.MethodPost, path, body)
	if w.Code != http.StatusOK {
		return fmt.Errorf("POST %s returned %d: %s", path, w.Code, w.Body.String())
	}
	return common.ParseJSONBytes(w.Body.Bytes(), out)
}

func (c *client) getJSON(path string, out any) error {
	w := c.do(http.MethodGet, path, "")
	if w.Code != http.StatusOK {
		return fmt.Errorf("GET %s returned %d", path, w.Code)
	}
	return common.ParseJSONBytes(w.Body.Bytes(), out)
}

func (c *client) generate(body string) (*planPayload, error) {
	var env planEnvelope
	if err := c.postJSON("/api/generate", body, &env); err != nil {
		return nil, err
	}
	return &env.Plan, nil
}
