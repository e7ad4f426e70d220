package providers

import (
	"fmt"
	"net/http"

	"github.com/BaSui01/roundtable/types"
)

// TransportError 包装网络层失败（拨号、超时、连接中断）。
func TransportError(provider string, cause error) *types.Error {
	return types.NewError(types.ErrOracleUnavailable, "oracle transport failure").
		WithHTTPStatus(http.StatusBadGateway).
		WithRetryable(true).
		WithProvider(provider).
		WithCause(cause)
}

// DecodeError 包装响应解析失败（格式异常视同 oracle 不可用）。
func DecodeError(provider string, cause error) *types.Error {
	return types.NewError(types.ErrOracleUnavailable, "oracle response malformed").
		WithHTTPStatus(http.StatusBadGateway).
		WithRetryable(true).
		WithProvider(provider).
		WithCause(cause)
}

// StatusError 将上游 HTTP 状态映射为统一的 oracle 失败。
// 429 与 5xx 可重试；4xx（密钥失效、配额耗尽、请求被拒）不可重试。
func StatusError(provider string, status int, upstreamMsg string) *types.Error {
	retryable := status == http.StatusTooManyRequests || status >= 500
	msg := fmt.Sprintf("oracle returned status %d", status)
	if upstreamMsg != "" {
		msg = fmt.Sprintf("oracle returned status %d: %s", status, upstreamMsg)
	}
	return types.NewError(types.ErrOracleUnavailable, msg).
		WithHTTPStatus(status).
		WithRetryable(retryable).
		WithProvider(provider)
}
