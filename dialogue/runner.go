package dialogue

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TurnObserver 在每个成功回合后被调用，用于流式输出或记录。
type TurnObserver func(Turn)

// StopCondition 在每个成功回合后检查，返回 true 则提前结束对话。
type StopCondition func(Turn) bool

// Runner 按固定回合数驱动一个对话直至结束、提前停止或出错。
type Runner struct {
	orch     *Orchestrator
	maxTurns int
	observer TurnObserver
	stop     StopCondition
	logger   *zap.Logger
}

// RunnerOption 配置 Runner。
type RunnerOption func(*Runner)

// WithTurnObserver 设置回合观察者。
func WithTurnObserver(fn TurnObserver) RunnerOption {
	return func(r *Runner) { r.observer = fn }
}

// WithStopCondition 设置提前停止条件。
func WithStopCondition(fn StopCondition) RunnerOption {
	return func(r *Runner) { r.stop = fn }
}

// WithRunnerLogger 设置日志器。
func WithRunnerLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner 创建 Runner。maxTurns <= 0 时不推进任何回合。
func NewRunner(orch *Orchestrator, maxTurns int, opts ...RunnerOption) *Runner {
	r := &Runner{
		orch:     orch,
		maxTurns: maxTurns,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(
		zap.String("component", "runner"),
		zap.String("conversation_id", orch.ID()),
	)
	return r
}

// Run 依次推进至多 maxTurns 个回合，返回完成的回合。
// 出错即返回，已完成的回合仍有效；ctx 取消时在下个回合前停止。
func (r *Runner) Run(ctx context.Context) ([]Turn, error) {
	turns := make([]Turn, 0, r.maxTurns)
	for i := 0; i < r.maxTurns; i++ {
		if err := ctx.Err(); err != nil {
			return turns, err
		}
		turn, err := r.orch.Advance(ctx)
		if err != nil {
			return turns, err
		}
		turns = append(turns, *turn)
		if r.observer != nil {
			r.observer(*turn)
		}
		if r.stop != nil && r.stop(*turn) {
			r.logger.Info("stop condition met", zap.Int("turn_index", turn.Index))
			break
		}
	}
	return turns, nil
}

// RunMany 并行运行多个互不相关的对话，任一失败即取消其余并返回首个错误。
// 各对话的回合按 runners 的顺序返回。
func RunMany(ctx context.Context, runners []*Runner) ([][]Turn, error) {
	results := make([][]Turn, len(runners))
	g, ctx := errgroup.WithContext(ctx)
	for i, r := range runners {
		g.Go(func() error {
			turns, err := r.Run(ctx)
			results[i] = turns
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
