// Package tokenizer 为渲染后的对话叙事提供 token 计数。
// 计数只用于日志与指标，从不用来改写发送给 oracle 的提示。
package tokenizer

import "strings"

// Counter 是统一的 token 计数接口。
type Counter interface {
	// CountTokens 返回给定文本的 token 数。
	CountTokens(text string) (int, error)

	// Name 返回计数器名称。
	Name() string
}

// ForModel 为给定模型返回合适的计数器：OpenAI 家族模型走 tiktoken，
// 其余模型退回到字符启发式估算。
func ForModel(model string) Counter {
	if strings.HasPrefix(model, "gpt-") || strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "text-embedding-") {
		return NewTiktokenCounter(model)
	}
	return NewEstimator()
}
