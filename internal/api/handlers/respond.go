package handlers

import (
	"errors"
	"net/http"
	"strings"

	"plan-generator/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// RequestID 取得請求 ID，沒有 requestid 中間件時讀取標頭
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// RespondError 將錯誤轉成 ErrorResponse，狀態碼取自錯誤本身
func RespondError(c *gin.Context, err error) {
	status, resp := common.ToErrorResponse(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("code", resp.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", RequestID(c)),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("Request failed", fields...)
	} else {
		common.LogWarn("Request rejected", fields...)
	}
	c.AbortWithStatusJSON(status, resp)
}

// BindError 請求格式錯誤
func BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+" "+fe.Tag())
		}
		RespondError(c, common.NewValidationError("invalid request: "+strings.Join(fields, ", ")))
		return
	}
	RespondError(c, common.NewValidationError("invalid request format: "+err.Error()))
}

// SplitList 解析逗號分隔的查詢參數
func SplitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
