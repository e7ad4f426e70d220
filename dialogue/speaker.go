package dialogue

import (
	"context"
	"strings"
	"time"

	"github.com/BaSui01/roundtable/internal/metrics"
	"github.com/BaSui01/roundtable/llm"
	"github.com/BaSui01/roundtable/llm/tokenizer"
	"github.com/BaSui01/roundtable/types"
	"go.uber.org/zap"
)

// narrativeFraming 是渲染对话叙事时的固定开场句。
const narrativeFraming = "Here is the conversation so far."

// Speaker 包装一个角色：不可变的身份与行为指令，加上一份私有的对话记录。
// 记录只通过 Absorb 追加；Produce 从不写入自己的记录。
type Speaker struct {
	identity   string
	directive  string
	transcript []types.Entry

	provider llm.Provider

	// oracle 调用参数
	model       string
	maxTokens   int
	temperature float32

	counter   tokenizer.Counter
	collector *metrics.Collector
	logger    *zap.Logger
}

// SpeakerOption 配置 Speaker。
type SpeakerOption func(*Speaker)

// WithModel 设置 oracle 模型名。
func WithModel(model string) SpeakerOption {
	return func(s *Speaker) { s.model = model }
}

// WithMaxTokens 设置单次回复 token 上限。
func WithMaxTokens(n int) SpeakerOption {
	return func(s *Speaker) { s.maxTokens = n }
}

// WithTemperature 设置采样温度。
func WithTemperature(t float32) SpeakerOption {
	return func(s *Speaker) { s.temperature = t }
}

// WithTokenCounter 启用渲染叙事的 token 计数（仅用于日志与指标）。
func WithTokenCounter(c tokenizer.Counter) SpeakerOption {
	return func(s *Speaker) { s.counter = c }
}

// WithSpeakerMetrics 启用 oracle 调用指标。
func WithSpeakerMetrics(c *metrics.Collector) SpeakerOption {
	return func(s *Speaker) { s.collector = c }
}

// WithSpeakerLogger 设置日志器。
func WithSpeakerLogger(logger *zap.Logger) SpeakerOption {
	return func(s *Speaker) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpeaker 创建一个发言者。identity 与 directive 创建后不再变化。
func NewSpeaker(identity, directive string, provider llm.Provider, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		identity:  identity,
		directive: directive,
		provider:  provider,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "speaker"), zap.String("identity", identity))
	return s
}

// Identity 返回发言者的展示身份。
func (s *Speaker) Identity() string { return s.identity }

// Directive 返回发言者的行为指令。
func (s *Speaker) Directive() string { return s.directive }

// Transcript 返回对话记录的副本。
func (s *Speaker) Transcript() []types.Entry {
	out := make([]types.Entry, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// TranscriptLen 返回对话记录条目数。
func (s *Speaker) TranscriptLen() int { return len(s.transcript) }

// Absorb 无条件追加一条记录。不去重，也不校验 identity 是否在花名册内。
func (s *Speaker) Absorb(identity, text string) {
	s.transcript = append(s.transcript, types.NewEntry(identity, text))
}

// Produce 渲染当前对话叙事并调用 oracle 产出一句新发言。
// 返回 oracle 的原文，不做任何后处理；自己的记录由之后的广播追加。
// oracle 失败时返回 code 为 types.ErrOracleUnavailable 的错误，不重试。
func (s *Speaker) Produce(ctx context.Context) (string, error) {
	content := s.renderNarrative()

	if s.counter != nil {
		if tokens, err := s.counter.CountTokens(content); err == nil {
			s.logger.Debug("narrative rendered",
				zap.Int("entries", len(s.transcript)),
				zap.Int("prompt_tokens", tokens),
			)
			if s.collector != nil {
				s.collector.RecordPromptTokens(s.identity, tokens)
			}
		}
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, &llm.GenerateRequest{
		Model:       s.model,
		Directive:   s.directive,
		Content:     content,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if s.collector != nil {
		s.collector.RecordOracleRequest(s.provider.Name(), time.Since(start), err)
	}
	if err != nil {
		if types.IsOracleUnavailable(err) {
			return "", err
		}
		// 非标准 Provider 实现：仍然统一映射为 oracle 不可用。
		return "", types.NewError(types.ErrOracleUnavailable, "oracle call failed").
			WithProvider(s.provider.Name()).
			WithCause(err)
	}
	return resp.Text, nil
}

// renderNarrative 把对话记录压成一段叙事文本：固定开场句，随后按插入
// 顺序逐条 "\n<identity>: <text>"，最后附上标识轮到谁发言的提示。
func (s *Speaker) renderNarrative() string {
	var b strings.Builder
	b.WriteString(narrativeFraming)
	for _, e := range s.transcript {
		b.WriteString("\n")
		b.WriteString(e.Identity)
		b.WriteString(": ")
		b.WriteString(e.Text)
	}
	b.WriteString("\n")
	b.WriteString(s.identity)
	b.WriteString(":")
	return b.String()
}
