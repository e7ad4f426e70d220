package llm

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/BaSui01/roundtable/types"
)

// RateLimitedProvider 在任意 Provider 外层施加 QPS 限制。
// 这是宿主侧的策略：dialogue 核心仍然只看到成功或失败。
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimitedProvider 创建限流装饰器。rps 为每秒请求数，burst 为突发容量。
func NewRateLimitedProvider(inner Provider, rps float64, burst int) *RateLimitedProvider {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (p *RateLimitedProvider) Name() string { return p.inner.Name() }

func (p *RateLimitedProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		// Wait 只在 ctx 取消或截止时间不足时失败。
		return nil, types.NewError(types.ErrOracleUnavailable, "rate limiter wait aborted").
			WithProvider(p.inner.Name()).
			WithCause(err)
	}
	return p.inner.Generate(ctx, req)
}
