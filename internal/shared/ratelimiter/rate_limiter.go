// Package ratelimiter はプロバイダーAPI呼び出しの最小間隔を保証します。
package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
// Wait は次の呼び出しが許可されるまでブロックし、ctx が終了した場合はエラーを返します。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter は token bucket で呼び出し間隔を制御します。
// バースト1で生成するため、連続する呼び出しの間隔は必ず interval 以上になります。
type RateLimiter struct {
	limiter *rate.Limiter
}

var _ RateLimiterInterface = (*RateLimiter)(nil)

// NewRateLimiter は呼び出し間隔 interval の RateLimiter を生成します。
// interval が0以下の場合は制限しません。
func NewRateLimiter(interval time.Duration) *RateLimiter {
	if interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// NewPerSecond は1秒あたり rps 回までに制限する RateLimiter を生成します。
func NewPerSecond(rps float64) *RateLimiter {
	if rps <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

// Wait はレートリミットの上限に達しているかを確認し、必要であれば待機します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}

// Noop は待機しない RateLimiter です。テストや制限不要な呼び出し元で使います。
type Noop struct{}

// Wait は ctx が既に終了していない限り即座に返ります。
func (Noop) Wait(ctx context.Context) error {
	return ctx.Err()
}
