package api

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestMain(m *testing.M) {
	// 请求日志走全局 logger，测试时只保留 warn 以上
	// DEBUG_TESTS=1 可以看到完整日志
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}
