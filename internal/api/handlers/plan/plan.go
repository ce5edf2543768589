package plan

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"travel-drink-generator/internal/api/web"
	"travel-drink-generator/internal/core/drink"
	"travel-drink-generator/internal/core/planner"
	"travel-drink-generator/internal/pkg/common"
	"travel-drink-generator/internal/selftest"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errRequestTooLarge = common.NewError(common.ErrCodeTooLarge, "Request body too large", http.StatusRequestEntityTooLarge, nil)

// Handler 飲品計畫相關路由
type Handler struct {
	service *planner.Service
	appName string
	// selfTestTarget 產生給自我測試用的獨立路由
	selfTestTarget func() (http.Handler, error)
}

// NewHandler 創建處理器
func NewHandler(service *planner.Service, appName string, selfTestTarget func() (http.Handler, error)) *Handler {
	return &Handler{
		service:        service,
		appName:        appName,
		selfTestTarget: selfTestTarget,
	}
}

// Generate POST /api/generate
func (h *Handler) Generate(c *gin.Context) {
	req, err := bindRequest(c)
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}

	result, err := h.service.Generate(c.Request.Context(), req, requestid.Get(c))
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": result})
}

// bindRequest 讀取偏好；空白請求體視為全部使用預設值
func bindRequest(c *gin.Context) (planner.Request, error) {
	var req planner.Request

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, errRequestTooLarge
		}
		return req, common.ErrInvalidRequest.WithMessage("Failed to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}

	if err := common.ParseJSONBytes(body, &req); err != nil {
		common.LogDebug("無法解析請求", zap.Error(err))
		if common.IsValidationError(err) {
			return req, err
		}
		return req, common.ErrInvalidRequest.WithMessage("Invalid preferences: " + err.Error())
	}
	return req, nil
}

// PDF GET /api/pdf/:key
func (h *Handler) PDF(c *gin.Context) {
	data, err := h.service.PDF(c.Request.Context(), c.Param("key"))
	if err != nil {
		common.WriteErrorResponse(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="drink_plan.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// HealthTips GET /api/health-tips
func (h *Handler) HealthTips(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tips": h.service.HealthTips()})
}

// SelfTest GET /api/selftest
func (h *Handler) SelfTest(c *gin.Context) {
	target, err := h.selfTestTarget()
	if err != nil {
		common.WriteErrorResponse(c, common.ErrInternalError.Wrap(err))
		return
	}

	report := selftest.Run(target, selftest.Options{PDFEnabled: h.service.PDFEnabled()})
	if !report.OK() {
		common.LogWarn("自我測試未全部通過", zap.Strings("failed", report.Failed))
	}
	c.JSON(http.StatusOK, report)
}

// Index GET /
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, web.IndexTemplate, web.IndexData{
		AppName:         h.appName,
		DefaultMaxKcal:  drink.DefaultMaxKcal,
		DefaultMaxCarbs: drink.DefaultMaxCarbs,
		MaxDrinkCount:   drink.MaxDrinkCount,
	})
}
