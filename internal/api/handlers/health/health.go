package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"travel-drink-generator/internal/core/artifact"
	"travel-drink-generator/internal/core/drink"
	"travel-drink-generator/internal/core/planner"
	"travel-drink-generator/internal/infrastructure/config"
	"travel-drink-generator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Cache     *artifact.Stats        `json:"cache,omitempty"`
}

// ReadyResponse 就緒檢查響應
type ReadyResponse struct {
	Status string                   `json:"status"`
	Cache  string                   `json:"cache"`
	Issues []drink.ConsistencyIssue `json:"issues"`
}

func dependencies(c *gin.Context) (*config.Config, *planner.Service, bool) {
	cfg, ok := c.Get("config")
	if !ok {
		common.LogError("Configuration not found in context")
		common.WriteErrorResponse(c, common.ErrInternalError.WithMessage("Configuration not found"))
		return nil, nil, false
	}
	svc, ok := c.Get("plan_service")
	if !ok {
		common.LogError("Plan service not found in context")
		common.WriteErrorResponse(c, common.ErrInternalError.WithMessage("Plan service not found"))
		return nil, nil, false
	}
	return cfg.(*config.Config), svc.(*planner.Service), true
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	cfg, svc, ok := dependencies(c)
	if !ok {
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Cache: svc.CacheStats(),
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器：快取可用才算就緒，資料表問題只回報
func ReadinessCheck(c *gin.Context) {
	_, svc, ok := dependencies(c)
	if !ok {
		return
	}

	resp := ReadyResponse{
		Status: "ready",
		Cache:  "ok",
		Issues: svc.Issues(),
	}
	if resp.Issues == nil {
		resp.Issues = []drink.ConsistencyIssue{}
	}
	if len(resp.Issues) > 0 {
		resp.Status = "degraded"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		common.LogWarn("快取無法連線", zap.Error(err))
		resp.Status = "unavailable"
		resp.Cache = err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
