package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	err := NewError(ErrCodeProviderTimeout, "github 抓取超时")
	assert.Equal(t, "[PROVIDER_TIMEOUT] github 抓取超时", err.Error())

	inner := errors.New("connection refused")
	wrapped := WrapError(ErrCodeProviderFetch, "gitlab 抓取失败", inner)
	assert.Contains(t, wrapped.Error(), "PROVIDER_FETCH_ERROR")
	assert.Contains(t, wrapped.Error(), "connection refused")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	wrapped := WrapError(ErrCodeCacheIO, "写缓存失败", inner)

	assert.ErrorIs(t, wrapped, inner)
}

func TestHasCode(t *testing.T) {
	err := NewError(ErrCodeAllProvidersFailed, "全部失败")
	assert.True(t, HasCode(err, ErrCodeAllProvidersFailed))
	assert.False(t, HasCode(err, ErrCodeProviderTimeout))

	// 套一层 fmt.Errorf 也能找到
	outer := fmt.Errorf("运行失败: %w", err)
	assert.True(t, HasCode(outer, ErrCodeAllProvidersFailed))

	assert.False(t, HasCode(errors.New("plain"), ErrCodeAllProvidersFailed))
}
