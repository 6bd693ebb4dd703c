package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string   `json:"code"`              // 錯誤代碼
	Message string   `json:"message"`           // 錯誤信息
	Details string   `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
	Trail   []string `json:"relaxation_trail,omitempty"`
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ConstraintError 放寬所有條件後仍沒有任何候選項目
type ConstraintError struct {
	Domain string   // meal / workout
	Slot   string   // 餐別或運動類型，可為空
	Trail  []string // 已嘗試的放寬步驟（依序）
}

func (e *ConstraintError) Error() string {
	msg := fmt.Sprintf("no %s candidates satisfy the profile constraints", e.Domain)
	if e.Slot != "" {
		msg += fmt.Sprintf(" for %s", e.Slot)
	}
	if len(e.Trail) > 0 {
		msg += fmt.Sprintf(" (relaxed: %s)", strings.Join(e.Trail, " -> "))
	}
	return msg
}

// AsConstraintError 取出 ConstraintError
func AsConstraintError(err error) (*ConstraintError, bool) {
	var c *ConstraintError
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}

// InvalidEntityError 目錄載入時驗證失敗的項目
type InvalidEntityError struct {
	Kind   string // recipe / workout
	ID     string
	Reason string
}

func (e *InvalidEntityError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.ID, e.Reason)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest          = "INVALID_REQUEST"          // 400
	ErrCodeNotFound                = "NOT_FOUND"                // 404
	ErrCodeRequestTimeout          = "REQUEST_TIMEOUT"          // 408
	ErrCodeConstraintUnsatisfiable = "CONSTRAINT_UNSATISFIABLE" // 422
	ErrCodeTooManyRequests         = "TOO_MANY_REQUESTS"        // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound        = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrRequestTimeout  = NewError(ErrCodeRequestTimeout, "請求超時", http.StatusRequestTimeout, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrCacheFull        = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
	ErrCacheDisabled    = NewError("CACHE_DISABLED", "緩存已禁用", http.StatusServiceUnavailable, nil)
	ErrCacheMiss        = NewError("CACHE_MISS", "緩存未命中", http.StatusNotFound, nil)
	ErrProviderDegraded = NewError("PROVIDER_DEGRADED", "外部模型服務不可用，改用備援", http.StatusServiceUnavailable, nil)
	ErrAIServiceError   = NewError("AI_SERVICE_ERROR", "AI 服務錯誤", http.StatusServiceUnavailable, nil)
)

// ToErrorResponse 將錯誤轉換為 HTTP 狀態碼與響應內容
func ToErrorResponse(err error) (int, ErrorResponse) {
	if c, ok := AsConstraintError(err); ok {
		return http.StatusUnprocessableEntity, ErrorResponse{
			Code:    ErrCodeConstraintUnsatisfiable,
			Message: c.Error(),
			Trail:   c.Trail,
		}
	}
	if IsValidationError(err) {
		return http.StatusBadRequest, ErrorResponse{
			Code:    ErrCodeInvalidRequest,
			Message: err.Error(),
		}
	}
	var custom *CustomError
	if errors.As(err, &custom) {
		return custom.Status, ErrorResponse{
			Code:    custom.Code,
			Message: custom.Message,
			Details: custom.Error(),
		}
	}
	return http.StatusInternalServerError, ErrorResponse{
		Code:    ErrCodeInternalError,
		Message: err.Error(),
	}
}
