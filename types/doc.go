// Copyright (c) Roundtable Authors.
// Licensed under the MIT License.

/*
Package types 提供 roundtable 的全局共享类型定义。

# 概述

types 是最底层的公共包，不依赖任何内部包，为 dialogue、llm、api 等
上层模块提供统一的类型契约。所有跨包共享的结构体与错误码均定义于此，
以避免循环依赖。

# 核心类型

  - Entry             — 对话记录条目（发言者身份 + 原文）
  - Error / ErrorCode — 结构化错误体系，含 HTTP 状态码、Retryable、Provider 标记

# 主要能力

  - 错误工具链：IsOracleUnavailable / IsRetryable / GetErrorCode
  - 错误构造：NewError + WithCause / WithHTTPStatus / WithRetryable / WithProvider
*/
package types
