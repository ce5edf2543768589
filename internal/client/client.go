// Package client 呼叫飲品計畫服務的 HTTP 客戶端，供 cmd/drinkplan 使用。
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"travel-drink-generator/internal/core/drink"
	"travel-drink-generator/internal/core/planner"
	"travel-drink-generator/internal/pkg/common"
	"travel-drink-generator/internal/selftest"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

const defaultTimeout = 30 * time.Second

// APIError 服務回傳的錯誤
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// PlanResponse 計畫與 PDF 連結
type PlanResponse struct {
	drink.Plan
	PDFURL *string `json:"pdf_url"`
}

type planEnvelope struct {
	Plan PlanResponse `json:"plan"`
}

// Client 飲品計畫 API 客戶端
type Client struct {
	client *resty.Client
}

// New 創建客戶端
func New(baseURL string) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)

	return &Client{client: client}
}

// Generate 送出偏好並取得計畫
func (c *Client) Generate(ctx context.Context, req planner.Request) (*PlanResponse, error) {
	var out planEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&common.ErrorResponse{}).
		Post("/api/generate")
	if err != nil {
		return nil, fmt.Errorf("failed to send generate request: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out.Plan, nil
}

// PDF 下載 PDF；ref 可以是 pdf_url 或單純的 key
func (c *Client) PDF(ctx context.Context, ref string) ([]byte, error) {
	path := ref
	if !strings.HasPrefix(ref, "/") {
		path = planner.PDFRoute + ref
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/pdf").
		SetError(&common.ErrorResponse{}).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("failed to download pdf: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// HealthTips 取得健康提醒
func (c *Client) HealthTips(ctx context.Context) ([]string, error) {
	var out struct {
		Tips []string `json:"tips"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&common.ErrorResponse{}).
		Get("/api/health-tips")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch health tips: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return out.Tips, nil
}

// SelfTest 觸發伺服器端自我測試
func (c *Client) SelfTest(ctx context.Context) (*selftest.Report, error) {
	var out selftest.Report
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&common.ErrorResponse{}).
		Get("/api/selftest")
	if err != nil {
		return nil, fmt.Errorf("failed to run self-test: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return nil, err
	}
	return &out, nil
}

func checkResponse(resp *resty.Response) error {
	if resp.StatusCode() == http.StatusOK {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode(), Message: resp.Status()}
	if body, ok := resp.Error().(*common.ErrorResponse); ok && body.Error != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	}
	return apiErr
}
