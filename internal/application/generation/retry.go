package generation

import (
	"time"
)

// RetryPolicy 上游调用重试策略
// 5xx 与网络层失败可重试，4xx 一律不重试
type RetryPolicy struct {
	// MaxAttempts 总尝试次数（含首次）
	MaxAttempts int
	// Backoff 第 attempt 次失败后的等待时长，attempt 从 1 开始
	Backoff func(attempt int) time.Duration
}

// DefaultRetryPolicy 默认策略：最多 3 次尝试，线性退避
func DefaultRetryPolicy(maxAttempts int, base time.Duration) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * base
		},
	}
}

// Retryable 判断一次失败是否可重试
// err != nil 表示尚未拿到状态码的网络层失败，此时重试；
// 否则按 HTTP 状态分类，仅 5xx 重试
func (p RetryPolicy) Retryable(status int, err error) bool {
	if err != nil {
		return true
	}
	return status >= 500
}
