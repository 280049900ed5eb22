package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "带底层错误",
			err:      WrapError(ErrCodeUpstreamFetch, "GitHub API 调用失败", errors.New("403 rate limit")),
			expected: "[UPSTREAM_FETCH_ERROR] GitHub API 调用失败: 403 rate limit",
		},
		{
			name:     "不带底层错误",
			err:      NewError(ErrCodeInvalidInput, `"language" is required`),
			expected: `[INVALID_INPUT] "language" is required`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError(ErrCodeUpstreamFetch, "GitHub API 调用失败", cause)

	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("fetch all: %w", NewError(ErrCodeNotFound, "missing"))

	assert.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
	assert.Equal(t, "", CodeOf(nil))
}
