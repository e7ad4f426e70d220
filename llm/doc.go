// Copyright (c) Roundtable Authors.
// Licensed under the MIT License.

/*
Package llm 定义 roundtable 消费的文本生成 oracle 抽象。

Provider 将「行为指令 + 对话叙事」转换为一段新的发言文本。dialogue 核心
只区分调用成功与失败：任何网络、认证、限流或响应解析错误，最终都映射为
types.ErrOracleUnavailable。

具体的 HTTP 客户端位于 llm/providers 子树（openaicompat、claude）。
RateLimitedProvider 与 RetryProvider 是宿主侧装饰器，核心不感知它们。
*/
package llm
