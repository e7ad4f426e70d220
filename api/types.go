package api

import (
	"time"

	"github.com/BaSui01/roundtable/types"
)

// =============================================================================
// 对话类型
// =============================================================================

// SpeakerSpec 描述花名册中的一个发言者。
// @Description 发言者定义结构
type SpeakerSpec struct {
	// 展示身份，对话内唯一
	Identity string `json:"identity" example:"Narrator" binding:"required"`
	// 行为指令，整场对话保持不变
	Directive string `json:"directive" example:"You narrate a fantasy quest." binding:"required"`
}

// SeedSpec 描述开场记录。
// @Description 开场记录结构
type SeedSpec struct {
	// 开场归属身份，不必在花名册内
	Identity string `json:"identity" example:"Narrator"`
	// 开场文本
	Text string `json:"text" example:"You stand at a crossroads."`
}

// CreateConversationRequest 表示创建对话请求。
// @Description 创建对话请求结构
type CreateConversationRequest struct {
	// 花名册，顺序即广播与轮询顺序
	Speakers []SpeakerSpec `json:"speakers" binding:"required"`
	// 可选开场记录，创建后立即广播
	Seed *SeedSpec `json:"seed,omitempty"`
	// 选择策略：round_robin（默认）或 random
	Policy string `json:"policy,omitempty" example:"round_robin"`
	// random 策略的种子，相同种子可复现发言顺序
	PolicySeed int64 `json:"policy_seed,omitempty"`
	// 覆盖全局模型名
	Model string `json:"model,omitempty" example:"gpt-4o-mini"`
	// 采样温度
	Temperature float32 `json:"temperature,omitempty" example:"0.7"`
	// 单次回复 token 上限
	MaxTokens int `json:"max_tokens,omitempty" example:"512"`
}

// ConversationInfo 表示一个对话的当前状态。
// @Description 对话状态结构
type ConversationInfo struct {
	// 对话 ID
	ID string `json:"id" example:"3f2b..."`
	// 花名册身份，按花名册顺序
	Roster []string `json:"roster"`
	// 已完成的回合数
	TurnIndex int `json:"turn_index" example:"3"`
	// 共享记录的条目数（含开场记录）
	TranscriptLen int `json:"transcript_len" example:"4"`
	// 创建时间
	CreatedAt time.Time `json:"created_at"`
}

// PrimeRequest 表示开场广播请求。
// @Description 开场广播请求结构
type PrimeRequest struct {
	// 开场归属身份
	Identity string `json:"identity" binding:"required"`
	// 开场文本
	Text string `json:"text" binding:"required"`
}

// RunRequest 表示连续推进请求。
// @Description 连续推进请求结构
type RunRequest struct {
	// 要推进的回合数，缺省用服务端配置的上限
	MaxTurns int `json:"max_turns,omitempty" example:"6"`
}

// TurnResult 表示一个成功完成的回合。
// @Description 回合结果结构
type TurnResult struct {
	// 回合序号，从 0 起
	Index int `json:"index" example:"0"`
	// 发言者身份
	Identity string `json:"identity" example:"Hero"`
	// 发言原文
	Text string `json:"text" example:"I go north."`
}

// RunResponse 表示连续推进的结果。
// @Description 连续推进结果结构
type RunResponse struct {
	// 本次完成的回合
	Turns []TurnResult `json:"turns"`
	// 推进后的回合计数
	TurnIndex int `json:"turn_index"`
}

// TranscriptResponse 表示共享记录。
// @Description 共享记录结构
type TranscriptResponse struct {
	// 对话 ID
	ID string `json:"id"`
	// 记录条目，按插入顺序
	Entries []types.Entry `json:"entries"`
}

// =============================================================================
// 流式类型
// =============================================================================

// StreamEvent 是 WebSocket 流上的一帧。
// @Description 流式事件结构
type StreamEvent struct {
	// 事件类型：turn、done 或 error
	Type string `json:"type" example:"turn"`
	// 回合内容（type 为 turn 时）
	Turn *TurnResult `json:"turn,omitempty"`
	// 错误信息（type 为 error 时）
	Error *ErrorDetail `json:"error,omitempty"`
	// 推进后的回合计数（type 为 done 时）
	TurnIndex int `json:"turn_index,omitempty"`
}

// ErrorDetail 表示流式或响应体中的错误信息。
// @Description 错误详情结构
type ErrorDetail struct {
	// 错误码
	Code string `json:"code" example:"ORACLE_UNAVAILABLE"`
	// 错误消息
	Message string `json:"message"`
	// 是否可重试
	Retryable bool `json:"retryable,omitempty"`
}

// StreamEvent 类型常量。
const (
	StreamEventTurn  = "turn"
	StreamEventDone  = "done"
	StreamEventError = "error"
)
