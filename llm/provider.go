package llm

import (
	"context"
	"time"
)

// GenerateRequest 描述一次 oracle 调用：系统级指令与用户侧内容。
type GenerateRequest struct {
	TraceID     string        `json:"trace_id,omitempty"`
	Model       string        `json:"model,omitempty"`
	Directive   string        `json:"directive"` // system 指令（角色设定、发言规则）
	Content     string        `json:"content"`   // 对话叙事 + 发言提示
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
}

// Usage 记录一次调用的 token 消耗。
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// GenerateResponse 是 oracle 的原始回复，Text 不做任何后处理。
type GenerateResponse struct {
	Text         string `json:"text"`
	Model        string `json:"model,omitempty"`
	Provider     string `json:"provider,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        Usage  `json:"usage,omitempty"`
}

// Provider 是文本生成 oracle 的统一接口。
// 实现必须把所有失败（超时、传输错误、响应格式异常）包装为
// code 为 types.ErrOracleUnavailable 的 *types.Error。
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}
