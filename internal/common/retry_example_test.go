package common_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github-repo-scorer/internal/common"
)

// ExampleDo 基本用法
func ExampleDo() {
	attempts := 0
	err := common.Do(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("502 bad gateway")
		}
		return nil
	}, common.WithInitialDelay(time.Millisecond))

	fmt.Println(attempts, err)
	// Output: 2 <nil>
}

// ExampleWithRetryIf 不可恢复的错误 (如 NOT_FOUND) 不重试
func ExampleWithRetryIf() {
	attempts := 0
	err := common.Do(context.Background(), func() error {
		attempts++
		return common.NewError(common.ErrCodeNotFound, "repository not found")
	},
		common.WithMaxRetries(3),
		common.WithInitialDelay(time.Millisecond),
		common.WithRetryIf(func(err error) bool {
			return common.CodeOf(err) != common.ErrCodeNotFound
		}),
	)

	fmt.Println(attempts, common.CodeOf(err))
	// Output: 1 NOT_FOUND
}
