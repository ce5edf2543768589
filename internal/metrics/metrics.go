package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API 指標
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drinkplan_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "drinkplan_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drinkplan_api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drinkplan_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	// 計畫指標
	PlansGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drinkplan_plans_generated_total",
			Help: "Plans computed, labelled by whether the fallback path was used",
		},
		[]string{"fallback"},
	)

	PlanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drinkplan_plan_duration_seconds",
			Help:    "Time spent computing a plan",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	PlanErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drinkplan_plan_errors_total",
			Help: "Plan requests that failed",
		},
		[]string{"code"},
	)

	// PDF 指標
	PDFRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "drinkplan_pdf_render_duration_seconds",
			Help:    "Time spent rendering plan PDFs",
			Buckets: prometheus.DefBuckets,
		},
	)

	PDFRenderErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "drinkplan_pdf_render_errors_total",
			Help: "PDF renders that failed",
		},
	)

	PDFDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "drinkplan_pdf_downloads_total",
			Help: "PDF download attempts by result",
		},
		[]string{"result"},
	)

	// 資料表一致性
	CatalogIssues = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "drinkplan_catalog_consistency_issues",
			Help: "Number of consistency issues found in the nutrition catalog and recipe library",
		},
	)
)

// RecordAPIRequest 記錄 API 請求
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest 追蹤進行中的請求
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimited 記錄被限流的請求
func RecordRateLimited() {
	RateLimitRejections.Inc()
}

// RecordPlan 記錄一次計畫計算
func RecordPlan(fallback bool, duration time.Duration) {
	PlansGenerated.WithLabelValues(strconv.FormatBool(fallback)).Inc()
	PlanDuration.Observe(duration.Seconds())
}

// RecordPlanError 記錄計畫失敗
func RecordPlanError(code string) {
	PlanErrors.WithLabelValues(code).Inc()
}

// RecordPDFRender 記錄 PDF 產生
func RecordPDFRender(duration time.Duration, err error) {
	PDFRenderDuration.Observe(duration.Seconds())
	if err != nil {
		PDFRenderErrors.Inc()
	}
}

// RecordPDFDownload 記錄下載結果：hit、expired 或 error
func RecordPDFDownload(result string) {
	PDFDownloads.WithLabelValues(result).Inc()
}

// SetCatalogIssues 更新一致性問題數
func SetCatalogIssues(n int) {
	CatalogIssues.Set(float64(n))
}

// Handler 回傳 /metrics 處理器
func Handler() http.Handler {
	return promhttp.Handler()
}
