// Package logging 基于 logrus 的日志初始化与按请求传递的 logger
package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// FieldCorrelationID 关联 ID 在日志中的字段名
const FieldCorrelationID = "correlation_id"

type ctxKey struct{}

// New 创建 logger，level 无法解析时回退到 info，format 为 "text" 时输出文本，否则输出 JSON
func New(level, format string) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, format)
}

// NewWithOutput 同 New，可指定输出位置
func NewWithOutput(out io.Writer, level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// WithContext 把 logger 放进 ctx
func WithContext(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext 取出 ctx 中的 logger，没有则返回 fallback
func FromContext(ctx context.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(logrus.FieldLogger); ok && logger != nil {
			return logger
		}
	}
	if fallback == nil {
		return logrus.StandardLogger()
	}
	return fallback
}

// Discard 丢弃所有输出，测试用
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
