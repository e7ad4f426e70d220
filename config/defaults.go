// =============================================================================
// 📦 Roundtable 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/roundtable/types"
)

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Dialogue:  DefaultDialogueConfig(),
		LLM:       DefaultLLMConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    10 * time.Minute, // 流式对话端点寿命较长
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
	}
}

// DefaultDialogueConfig 返回默认对话配置
func DefaultDialogueConfig() DialogueConfig {
	return DialogueConfig{
		MaxTurns:    6,
		Temperature: 0.7,
		MaxTokens:   256,
	}
}

// DefaultLLMConfig 返回默认 oracle 配置
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:       "openai",
		Model:          "gpt-4o-mini",
		Timeout:        60 * time.Second,
		RateLimitRPS:   0, // 默认不限速
		RateLimitBurst: 1,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "json",
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "roundtable",
		SampleRate:   1.0,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if c.Dialogue.MaxTurns <= 0 {
		errs = append(errs, "max_turns must be positive")
	}
	if c.Dialogue.Temperature < 0 || c.Dialogue.Temperature > 2 {
		errs = append(errs, "temperature must be in [0, 2]")
	}

	seen := make(map[string]struct{}, len(c.Dialogue.Speakers))
	for _, s := range c.Dialogue.Speakers {
		if strings.TrimSpace(s.Identity) == "" {
			errs = append(errs, "speaker identity must not be empty")
			continue
		}
		if _, dup := seen[s.Identity]; dup {
			errs = append(errs, fmt.Sprintf("duplicate speaker identity %q", s.Identity))
		}
		seen[s.Identity] = struct{}{}
	}

	if len(errs) > 0 {
		return types.NewError(types.ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
