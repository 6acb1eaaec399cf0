package common

import (
	"errors"
	"fmt"
)

// AppError 应用级错误结构
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code, message string, err error) error {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewError 创建新错误
func NewError(code, message string) error {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// HasCode 判断错误链上是否有指定错误码的 AppError
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// 错误码常量
const (
	ErrCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"   // adapter 初始化失败，该 provider 不参与本轮
	ErrCodeProviderFetch       = "PROVIDER_FETCH_ERROR"   // 抓取过程中的网络/解析错误
	ErrCodeProviderTimeout     = "PROVIDER_TIMEOUT"       // 单 provider 硬超时
	ErrCodeAllProvidersFailed  = "ALL_PROVIDERS_FAILED"   // 所有 provider 都没有产出，整轮失败
	ErrCodeCacheIO             = "CACHE_IO_ERROR"         // seen/starred/缓存 文件读写失败，降级处理
	ErrCodeStateCorrupt        = "STATE_CORRUPT"          // 状态文件解析失败，视同不存在
	ErrCodeInvalidInput        = "INVALID_INPUT"
)
