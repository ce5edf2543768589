package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"travel-drink-generator/internal/api/handlers/health"
	planHandler "travel-drink-generator/internal/api/handlers/plan"
	"travel-drink-generator/internal/api/middleware"
	"travel-drink-generator/internal/api/web"
	"travel-drink-generator/internal/core/planner"
	"travel-drink-generator/internal/infrastructure/config"
	"travel-drink-generator/internal/metrics"
	"travel-drink-generator/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 單一請求的處理上限
const timeoutDuration = 30 * time.Second

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc *planner.Service) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	router, err := newRouter(cfg, svc, true)
	if err != nil {
		return nil, err
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Bool("pdf_enabled", svc.PDFEnabled()),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)
	return router, nil
}

// SelfTestHandler 不含限流與去重的路由，供自我測試重複送出相同請求
func SelfTestHandler(cfg *config.Config, svc *planner.Service) (http.Handler, error) {
	return newRouter(cfg, svc, false)
}

func newRouter(cfg *config.Config, svc *planner.Service, guarded bool) (*gin.Engine, error) {
	// 設置 gin 模式
	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		common.WriteErrorResponse(c, common.ErrNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		common.WriteErrorResponse(c, common.ErrMethodNotAllowed)
	})

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())
	router.Use(middleware.ContentSecurityPolicy(cfg.Security.AllowedOrigins))

	// CORS 設置，只開放給允許嵌入的來源
	if len(cfg.Security.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.Security.AllowedOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}))
	}

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("plan_service", svc)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeoutDuration),
			)
			common.WriteErrorResponse(c, common.ErrGatewayTimeout)
		}
	})

	// 頁面與靜態資源
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", web.Static())

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	h := planHandler.NewHandler(svc, cfg.App.Name, func() (http.Handler, error) {
		return SelfTestHandler(cfg, svc)
	})

	router.GET("/", h.Index)

	// API 路由組
	apiGroup := router.Group("/api")
	{
		generate := []gin.HandlerFunc{h.Generate}
		if guarded {
			if cfg.RateLimit.Enabled {
				limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst)
				apiGroup.Use(middleware.RateLimit(limiter))
			}
			dedup := middleware.NewDeduplicator(cfg.DedupWindow)
			generate = append([]gin.HandlerFunc{dedup.Middleware()}, generate...)
		}

		apiGroup.POST("/generate", generate...)
		apiGroup.GET("/pdf/:key", h.PDF)
		apiGroup.GET("/health-tips", h.HealthTips)
		apiGroup.GET("/selftest", h.SelfTest)
	}

	return router, nil
}
