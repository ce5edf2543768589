package planner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"travel-drink-generator/internal/core/artifact"
	"travel-drink-generator/internal/core/drink"
	"travel-drink-generator/internal/core/render"
	"travel-drink-generator/internal/metrics"
	"travel-drink-generator/internal/pkg/common"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PDFRoute 下載 PDF 的路徑前綴
const PDFRoute = "/api/pdf/"

// Request 產生計畫的請求
type Request struct {
	drink.PreferencesInput
	WantPDF bool `json:"want_pdf,omitempty"`
}

// UnmarshalJSON drink_count 接受整數、小數（無條件捨去）與數字字串
func (r *Request) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var count *int
	if raw, ok := fields["drink_count"]; ok {
		delete(fields, "drink_count")
		n, err := parseDrinkCount(raw)
		if err != nil {
			return err
		}
		count = n
	}

	rest, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	type plain Request
	var p plain
	if err := json.Unmarshal(rest, &p); err != nil {
		return err
	}
	*r = Request(p)
	r.DrinkCount = count
	return nil
}

const maxDrinkCountInput = 1 << 20

func parseDrinkCount(raw json.RawMessage) (*int, error) {
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return nil, nil
	}
	text = strings.Trim(text, `"`)

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, common.NewValidationError("drink_count must be an integer")
	}
	f = math.Max(-maxDrinkCountInput, math.Min(maxDrinkCountInput, math.Trunc(f)))
	n := int(f)
	return &n, nil
}

// Result 計畫與可選的 PDF 連結
type Result struct {
	*drink.Plan
	PDFURL *string `json:"pdf_url"`
}

// Service 包裝推薦引擎，負責記錄、指標與 PDF 暫存
type Service struct {
	engine     *drink.Engine
	store      artifact.Store
	pdfEnabled bool
	renderer   func(*drink.Plan) ([]byte, error)
	group      singleflight.Group
	issues     []drink.ConsistencyIssue
}

// Option 服務選項
type Option func(*Service)

// WithRenderer 替換 PDF 產生函式
func WithRenderer(fn func(*drink.Plan) ([]byte, error)) Option {
	return func(s *Service) { s.renderer = fn }
}

// NewService 建立服務；store 為 nil 時停用 PDF
func NewService(engine *drink.Engine, store artifact.Store, pdfEnabled bool, opts ...Option) *Service {
	s := &Service{
		engine:     engine,
		store:      store,
		pdfEnabled: pdfEnabled && store != nil,
		renderer:   render.PDF,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.issues = drink.CheckConsistency(engine.Catalog(), engine.Library())
	metrics.SetCatalogIssues(len(s.issues))
	for _, issue := range s.issues {
		common.LogWarn("資料表不一致", zap.String("issue", issue.Error()))
	}

	common.LogInfo("計畫服務已初始化",
		zap.Int("bases", len(engine.Catalog().Bases())),
		zap.Int("mixers", len(engine.Catalog().Mixers())),
		zap.Int("recipes", len(engine.Library().Stored())),
		zap.Bool("pdf_enabled", s.pdfEnabled),
	)
	return s
}

// Generate 計算計畫，需要時產生 PDF 並回傳下載連結
func (s *Service) Generate(ctx context.Context, req Request, requestID string) (*Result, error) {
	start := time.Now()

	plan, err := s.engine.ComputePlan(req.PreferencesInput)
	if err != nil {
		if errors.Is(err, drink.ErrNoCandidates) {
			metrics.RecordPlanError(common.ErrCodeNoCandidates)
			return nil, common.ErrNoCandidates.Wrap(err)
		}
		metrics.RecordPlanError(common.ErrCodeInternalError)
		return nil, common.ErrInternalError.Wrap(err)
	}

	elapsed := time.Since(start)
	metrics.RecordPlan(plan.FallbackUsed, elapsed)
	common.LogPlanComputed(requestID, len(plan.Picks), plan.FallbackUsed, elapsed)

	result := &Result{Plan: plan}
	if req.WantPDF && s.pdfEnabled {
		key, err := s.storePDF(ctx, plan)
		if err != nil {
			// PDF 失敗不影響計畫本身
			common.LogWarn("PDF 產生失敗",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
		} else {
			url := PDFRoute + key
			result.PDFURL = &url
		}
	}
	return result, nil
}

// storePDF 相同計畫同時請求時只產生一次
func (s *Service) storePDF(ctx context.Context, plan *drink.Plan) (string, error) {
	fingerprint, err := planFingerprint(plan)
	if err != nil {
		return "", err
	}

	v, err, shared := s.group.Do(fingerprint, func() (interface{}, error) {
		start := time.Now()
		data, err := s.renderer(plan)
		metrics.RecordPDFRender(time.Since(start), err)
		if err != nil {
			return "", err
		}

		key := common.GenerateArtifactKey()
		if err := s.store.Put(ctx, key, data); err != nil {
			return "", fmt.Errorf("store pdf: %w", err)
		}
		common.LogDebug("PDF 已儲存", zap.String("key", key), zap.Int("size", len(data)))
		return key, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		common.LogDebug("共用進行中的 PDF 產生", zap.String("fingerprint", fingerprint[:12]))
	}
	return v.(string), nil
}

// PDF 取回已儲存的 PDF
func (s *Service) PDF(ctx context.Context, key string) ([]byte, error) {
	if s.store == nil {
		metrics.RecordPDFDownload("disabled")
		return nil, common.ErrPDFUnavailable
	}
	if key == "" {
		metrics.RecordPDFDownload("expired")
		return nil, common.ErrPDFExpired
	}

	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			metrics.RecordPDFDownload("expired")
			return nil, common.ErrPDFExpired
		}
		metrics.RecordPDFDownload("error")
		return nil, common.ErrServiceUnavailable.Wrap(err)
	}
	metrics.RecordPDFDownload("hit")
	return data, nil
}

// HealthTips 固定的健康提示
func (s *Service) HealthTips() []string {
	return drink.HealthTips()
}

// Issues 啟動時發現的資料表問題
func (s *Service) Issues() []drink.ConsistencyIssue {
	return append([]drink.ConsistencyIssue(nil), s.issues...)
}

// PDFEnabled 是否提供 PDF 匯出
func (s *Service) PDFEnabled() bool {
	return s.pdfEnabled
}

// CacheStats 回傳 PDF 快取統計
func (s *Service) CacheStats() *artifact.Stats {
	if s.store == nil {
		return nil
	}
	stats := s.store.Stats()
	return &stats
}

// Ping 檢查外部快取是否可用
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close 關閉底層快取
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

func planFingerprint(plan *drink.Plan) (string, error) {
	raw, err := common.ToJSON(plan)
	if err != nil {
		return "", fmt.Errorf("fingerprint plan: %w", err)
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:]), nil
}
