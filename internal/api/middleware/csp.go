package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
)

// ContentSecurityPolicy 每個回應都帶 CSP；允許清單內的 Origin 可以嵌入頁面
func ContentSecurityPolicy(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", BuildCSP(c.GetHeader("Origin"), allowedOrigins))
		c.Next()
	}
}

// BuildCSP 組出 CSP 標頭值
func BuildCSP(origin string, allowedOrigins []string) string {
	ancestors := "'self'"
	if origin != "" && slices.Contains(allowedOrigins, origin) {
		ancestors = "'self' " + origin
	}
	return "default-src 'self'; frame-ancestors " + ancestors + "; base-uri 'self'; " +
		"script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline';"
}
