package handlers

import (
	"net/http"
	"strconv"

	"github.com/BaSui01/roundtable/api"
	"github.com/BaSui01/roundtable/dialogue"
	"github.com/BaSui01/roundtable/types"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"
)

// =============================================================================
// 🌊 WebSocket 流式 Handler
// =============================================================================

// StreamHandler 通过 WebSocket 连续推进对话，每完成一个回合推送一帧。
// 结束时推送 done 帧；oracle 失败时推送 error 帧，已完成的回合仍然生效。
type StreamHandler struct {
	conversations *ConversationHandler
	logger        *zap.Logger
}

// NewStreamHandler 创建流式处理器。
func NewStreamHandler(conversations *ConversationHandler, logger *zap.Logger) *StreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamHandler{
		conversations: conversations,
		logger:        logger.With(zap.String("component", "stream_handler")),
	}
}

// HandleStream 处理 WebSocket 流式推进请求
// @Summary 流式推进对话
// @Description 升级为 WebSocket，逐回合推送 StreamEvent 帧
// @Tags 对话
// @Param id path string true "对话 ID"
// @Param max_turns query int false "要推进的回合数"
// @Success 101 "协议切换"
// @Failure 404 {object} Response "对话不存在"
// @Security BearerAuth
// @Router /v1/conversations/{id}/stream [get]
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.conversations.lookup(r.PathValue("id"))
	if !ok {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrInvalidConfig, "conversation not found", h.logger)
		return
	}

	maxTurns := sess.maxTurns
	if raw := r.URL.Query().Get("max_turns"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidConfig, "max_turns must be a positive integer", h.logger)
			return
		}
		maxTurns = n
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	// WebSocket 不支持并发写；observer 在 Run 的 goroutine 内串行调用。
	writeErr := error(nil)
	observer := func(turn dialogue.Turn) {
		if writeErr != nil {
			return
		}
		writeErr = wsjson.Write(ctx, conn, api.StreamEvent{
			Type: api.StreamEventTurn,
			Turn: &api.TurnResult{Index: turn.Index, Identity: turn.Identity, Text: turn.Text},
		})
	}

	sess.mu.Lock()
	runner := dialogue.NewRunner(sess.orch, maxTurns,
		dialogue.WithTurnObserver(observer),
		dialogue.WithRunnerLogger(h.logger),
	)
	_, runErr := runner.Run(ctx)
	turnIndex := sess.orch.TurnIndex()
	sess.mu.Unlock()

	if writeErr != nil {
		h.logger.Warn("stream write failed", zap.Error(writeErr))
		return
	}

	if runErr != nil {
		_ = wsjson.Write(ctx, conn, api.StreamEvent{
			Type: api.StreamEventError,
			Error: &api.ErrorDetail{
				Code:      string(types.GetErrorCode(runErr)),
				Message:   runErr.Error(),
				Retryable: types.IsRetryable(runErr),
			},
			TurnIndex: turnIndex,
		})
		conn.Close(websocket.StatusNormalClosure, "oracle unavailable")
		return
	}

	_ = wsjson.Write(ctx, conn, api.StreamEvent{
		Type:      api.StreamEventDone,
		TurnIndex: turnIndex,
	})
	conn.Close(websocket.StatusNormalClosure, "done")
}
