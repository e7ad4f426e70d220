package llm

import (
	"context"
	"time"

	"github.com/BaSui01/roundtable/types"
	"go.uber.org/zap"
)

// RetryProvider 对可重试的 oracle 失败做指数退避重试。
//
// dialogue 核心自身从不重试（失败的回合原子性地中止）；重试属于调用方
// 策略，需要时把 Provider 包进本装饰器即可。
type RetryProvider struct {
	inner       Provider
	maxAttempts int
	baseDelay   time.Duration
	logger      *zap.Logger
}

// NewRetryProvider 创建重试装饰器。maxAttempts 含首次调用，最小为 1。
func NewRetryProvider(inner Provider, maxAttempts int, baseDelay time.Duration, logger *zap.Logger) *RetryProvider {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryProvider{
		inner:       inner,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger.With(zap.String("component", "retry_provider")),
	}
}

func (p *RetryProvider) Name() string { return p.inner.Name() }

func (p *RetryProvider) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	var lastErr error
	delay := p.baseDelay

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		resp, err := p.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !types.IsRetryable(err) || attempt == p.maxAttempts {
			break
		}

		p.logger.Warn("oracle call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, types.NewError(types.ErrOracleUnavailable, "retry aborted").
				WithProvider(p.inner.Name()).
				WithCause(ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, lastErr
}
