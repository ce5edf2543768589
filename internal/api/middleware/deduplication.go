package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"travel-drink-generator/internal/pkg/common"
)

// ReplayHeader 重放的回應會帶上此標頭
const ReplayHeader = "X-Deduplicated"

// 每個請求保留自己的請求編號
const requestIDHeader = "X-Request-Id"

// response 第一個請求的回應，done 關閉後才可讀取
type response struct {
	startedAt time.Time
	done      chan struct{}
	status    int
	header    http.Header
	body      []byte
}

func (r *response) replayable() bool {
	return r.status >= http.StatusOK && r.status < http.StatusMultipleChoices
}

// Deduplicator 以請求指紋合併短時間內的重複送出，重複請求取得第一次的回應
type Deduplicator struct {
	window    time.Duration
	mu        sync.Mutex
	responses map[string]*response
	lastScan  time.Time
	now       func() time.Time
}

// NewDeduplicator 建立去重器；window <= 0 時不啟用
func NewDeduplicator(window time.Duration) *Deduplicator {
	return &Deduplicator{
		window:    window,
		responses: make(map[string]*response),
		now:       time.Now,
	}
}

// acquire 回傳指紋對應的回應，第二個值表示視窗內已有相同請求
func (d *Deduplicator) acquire(fingerprint string) (*response, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	// 過期指紋每隔十個視窗清一次
	if now.Sub(d.lastScan) > 10*d.window {
		for k, r := range d.responses {
			if now.Sub(r.startedAt) > d.window {
				delete(d.responses, k)
			}
		}
		d.lastScan = now
	}

	if r, ok := d.responses[fingerprint]; ok && now.Sub(r.startedAt) <= d.window {
		return r, true
	}
	r := &response{startedAt: now, done: make(chan struct{})}
	d.responses[fingerprint] = r
	return r, false
}

// recordingWriter 同時寫出並保留回應內容
type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Middleware 請求去重中間件，只處理 POST
func (d *Deduplicator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if d.window <= 0 || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// 計算請求體哈希
		bodyHash := ""
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogWarn("Failed to read request body", zap.Error(err))
				common.WriteErrorResponse(c, common.ErrInvalidRequest.WithMessage("Failed to read request body"))
				return
			}
			hash := sha256.Sum256(body)
			bodyHash = hex.EncodeToString(hash[:])

			// 恢復請求體
			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		// 生成請求指紋
		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + bodyHash

		first, duplicate := d.acquire(fingerprint)
		if duplicate {
			select {
			case <-first.done:
			case <-c.Request.Context().Done():
				common.WriteErrorResponse(c, common.ErrRequestTimeout)
				return
			}
			if first.replayable() {
				common.LogDebug("重複請求已重放",
					zap.String("path", c.Request.URL.Path),
					zap.String("ip", c.ClientIP()),
				)
				for k, v := range first.header {
					if k == requestIDHeader {
						continue
					}
					c.Writer.Header()[k] = v
				}
				c.Header(ReplayHeader, "true")
				c.Writer.WriteHeader(first.status)
				_, _ = c.Writer.Write(first.body)
				c.Abort()
				return
			}
			// 第一次失敗時照常處理
			c.Next()
			return
		}

		rw := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = rw
		completed := false
		defer func() {
			if completed && rw.Written() {
				first.status = rw.Status()
				first.header = rw.Header().Clone()
				first.body = rw.body.Bytes()
			}
			close(first.done)
		}()

		c.Next()
		completed = true
	}
}
