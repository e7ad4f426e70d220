package dialogue

import (
	"context"
	"fmt"
	"time"

	"github.com/BaSui01/roundtable/internal/metrics"
	"github.com/BaSui01/roundtable/types"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Turn 记录一个成功推进的回合。
type Turn struct {
	Index    int    `json:"index"`
	Identity string `json:"identity"`
	Text     string `json:"text"`
}

// Orchestrator 驱动一组 Speaker 的回合制对话。
//
// 非并发安全：单个对话内的 Prime 与 Advance 必须由同一 goroutine
// 串行调用。多个对话彼此独立，可并行运行各自的 Orchestrator。
type Orchestrator struct {
	id        string
	roster    []*Speaker
	policy    SelectionPolicy
	turnIndex int

	logger    *zap.Logger
	collector *metrics.Collector
	tracer    trace.Tracer
}

// OrchestratorOption 配置 Orchestrator。
type OrchestratorOption func(*Orchestrator)

// WithPolicy 替换默认的轮询策略。
func WithPolicy(p SelectionPolicy) OrchestratorOption {
	return func(o *Orchestrator) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithLogger 设置日志器。
func WithLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics 启用回合指标。
func WithMetrics(c *metrics.Collector) OrchestratorOption {
	return func(o *Orchestrator) { o.collector = c }
}

// NewOrchestrator 创建编排器。花名册非空且身份互不相同，否则报错。
// 花名册顺序即广播顺序，也是选择策略看到的下标顺序。
func NewOrchestrator(roster []*Speaker, opts ...OrchestratorOption) (*Orchestrator, error) {
	if len(roster) == 0 {
		return nil, fmt.Errorf("dialogue: roster is empty")
	}
	seen := make(map[string]struct{}, len(roster))
	for _, sp := range roster {
		if _, dup := seen[sp.Identity()]; dup {
			return nil, fmt.Errorf("dialogue: duplicate identity %q in roster", sp.Identity())
		}
		seen[sp.Identity()] = struct{}{}
	}

	o := &Orchestrator{
		id:     uuid.NewString(),
		roster: roster,
		policy: RoundRobinPolicy{},
		logger: zap.NewNop(),
		tracer: otel.Tracer("roundtable/dialogue"),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(
		zap.String("component", "orchestrator"),
		zap.String("conversation_id", o.id),
	)
	return o, nil
}

// ID 返回对话的唯一标识。
func (o *Orchestrator) ID() string { return o.id }

// TurnIndex 返回已成功完成的回合数。
func (o *Orchestrator) TurnIndex() int { return o.turnIndex }

// Transcript 返回共享对话记录的副本。每个回合之后所有发言者的
// 记录逐条相同，因此花名册首位的记录就是全局历史。
func (o *Orchestrator) Transcript() []types.Entry {
	return o.roster[0].Transcript()
}

// Roster 返回花名册中各发言者的身份，按花名册顺序。
func (o *Orchestrator) Roster() []string {
	out := make([]string, len(o.roster))
	for i, sp := range o.roster {
		out[i] = sp.Identity()
	}
	return out
}

// Prime 把一条开场记录广播给所有发言者，不推进回合计数。
// identity 不必在花名册内。可多次调用，每次都追加。
func (o *Orchestrator) Prime(identity, text string) {
	o.broadcast(identity, text)
	o.logger.Info("conversation primed",
		zap.String("identity", identity),
		zap.Int("roster_size", len(o.roster)),
	)
}

// Advance 推进一个回合：按策略选择发言者，调用其 Produce，成功则把
// 发言按花名册顺序广播给所有人（含发言者本人）并递增回合计数。
//
// 失败是原子的：oracle 出错时不广播、不递增，所有记录保持调用前状态，
// Advance 可安全重试。
func (o *Orchestrator) Advance(ctx context.Context) (*Turn, error) {
	ctx, span := o.tracer.Start(ctx, "dialogue.Advance",
		trace.WithAttributes(
			attribute.String("conversation.id", o.id),
			attribute.Int("conversation.turn_index", o.turnIndex),
		),
	)
	defer span.End()

	idx := o.policy.Next(o.turnIndex, len(o.roster))
	if idx < 0 || idx >= len(o.roster) {
		err := fmt.Errorf("dialogue: policy selected out-of-range index %d for roster of %d", idx, len(o.roster))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	speaker := o.roster[idx]
	span.SetAttributes(attribute.String("speaker.identity", speaker.Identity()))

	start := time.Now()
	text, err := speaker.Produce(ctx)
	if err != nil {
		if o.collector != nil {
			o.collector.RecordTurnFailure(o.id, speaker.Identity())
		}
		o.logger.Warn("turn failed, state unchanged",
			zap.Int("turn_index", o.turnIndex),
			zap.String("identity", speaker.Identity()),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "oracle unavailable")
		return nil, err
	}

	o.broadcast(speaker.Identity(), text)
	turn := &Turn{Index: o.turnIndex, Identity: speaker.Identity(), Text: text}
	o.turnIndex++

	if o.collector != nil {
		o.collector.RecordTurn(o.id, speaker.Identity(), time.Since(start), speaker.TranscriptLen())
	}
	o.logger.Info("turn completed",
		zap.Int("turn_index", turn.Index),
		zap.String("identity", turn.Identity),
		zap.Duration("duration", time.Since(start)),
	)
	span.SetStatus(codes.Ok, "")
	return turn, nil
}

// broadcast 按花名册顺序向每个发言者追加同一条记录。
func (o *Orchestrator) broadcast(identity, text string) {
	for _, sp := range o.roster {
		sp.Absorb(identity, text)
	}
}
