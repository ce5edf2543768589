package common

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateArtifactKey 生成不含連字號的檔案鍵
func GenerateArtifactKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WriteErrorResponse 寫入錯誤響應
func WriteErrorResponse(c *gin.Context, err error) {
	ce := AsCustomError(err)
	resp := ErrorResponse{
		Error: ce.Message,
		Code:  ce.Code,
	}
	if gin.Mode() == gin.DebugMode && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	if ce.Status >= 500 {
		LogError("請求處理失敗",
			zap.String("code", ce.Code),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(ce.Status, resp)
}
