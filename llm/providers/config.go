package providers

import "time"

// BaseProviderConfig 是所有 Provider 共享的基础配置。
type BaseProviderConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model" yaml:"model"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// OpenAICompatConfig 配置 OpenAI 兼容端点（OpenAI、DeepSeek、本地网关等）。
type OpenAICompatConfig struct {
	BaseProviderConfig `yaml:",inline"`

	// ProviderName 用于日志与错误标记，默认 "openai-compat"。
	ProviderName string `json:"provider_name" yaml:"provider_name"`
	// Organization 对应 OpenAI-Organization 请求头（可选）。
	Organization string `json:"organization" yaml:"organization"`
}

// ClaudeConfig 配置 Anthropic Claude 端点。
type ClaudeConfig struct {
	BaseProviderConfig `yaml:",inline"`

	// APIVersion 对应 anthropic-version 请求头。
	APIVersion string `json:"api_version" yaml:"api_version"`
}
