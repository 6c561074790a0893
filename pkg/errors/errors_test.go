package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAppError 测试业务错误类型
func TestAppError(t *testing.T) {
	t.Run("预定义错误可以用errors.Is比较", func(t *testing.T) {
		err := fmt.Errorf("借书失败: %w", ErrNoAvailableCopies)
		assert.ErrorIs(t, err, ErrNoAvailableCopies, "包装后仍应该匹配原错误")
	})

	t.Run("Wrap保留底层错误", func(t *testing.T) {
		cause := errors.New("connection refused")
		wrapped := Wrap(cause, "数据库错误")

		assert.ErrorIs(t, wrapped, cause, "Unwrap应该暴露底层错误")
		assert.Equal(t, ErrCodeInternal, wrapped.Code, "Wrap默认归为系统内部错误")
	})

	t.Run("GetAppError提取错误码", func(t *testing.T) {
		appErr := GetAppError(fmt.Errorf("外层: %w", ErrDuplicateEntry))
		require.NotNil(t, appErr)
		assert.Equal(t, ErrCodeDuplicateEntry, appErr.Code)

		// 非AppError被包装成内部错误
		appErr = GetAppError(errors.New("plain error"))
		require.NotNil(t, appErr)
		assert.Equal(t, ErrCodeInternal, appErr.Code)
	})

	t.Run("IsAppError", func(t *testing.T) {
		assert.True(t, IsAppError(ErrBookNotFound))
		assert.False(t, IsAppError(errors.New("plain error")))
	})
}
