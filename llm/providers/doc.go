// Package providers 提供各厂商 oracle 实现共享的配置与错误映射。
//
// 所有 HTTP 层失败统一映射为 types.ErrOracleUnavailable：dialogue 核心
// 不解释错误子类型，HTTP 状态码与 Retryable 仅作为元数据保留。
package providers
