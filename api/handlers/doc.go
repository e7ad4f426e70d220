// Copyright (c) Roundtable Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 Roundtable HTTP API 的请求处理器实现。

# 概述

handlers 包实现了 Roundtable 所有 HTTP 端点的请求处理逻辑，
包括对话的创建、开场、逐回合推进、连续运行、记录读取、
WebSocket 流式输出，以及统一的响应/错误处理。
所有 Handler 均遵循标准 net/http 接口。

# 核心类型

  - ConversationHandler — 对话生命周期：创建、开场、推进、运行、记录、删除
  - StreamHandler       — WebSocket 流式推进，每完成一回合推送一帧
  - HealthHandler       — 服务健康检查（/health, /healthz, /ready）
  - Response            — 统一 JSON 响应结构（success + data + error + timestamp）
  - ErrorInfo           — 结构化错误信息，含 code、message、retryable 标记
  - ResponseWriter      — 包装 http.ResponseWriter 以捕获状态码
  - HealthCheck         — 可插拔健康检查接口（oracle 连通性等）

# 主要能力

  - 统一响应格式：WriteSuccess / WriteError / WriteJSON 辅助函数
  - 请求验证：DecodeJSONBody（严格模式）、ValidateContentType
  - ErrorCode → HTTP 状态码自动映射（4xx/5xx）
  - 单对话串行：同一对话的推进请求由互斥锁串行化
  - 可扩展健康检查：RegisterCheck 注册自定义 HealthCheck 实现
*/
package handlers
