package handlers

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/BaSui01/roundtable/api"
	"github.com/BaSui01/roundtable/config"
	"github.com/BaSui01/roundtable/dialogue"
	"github.com/BaSui01/roundtable/internal/metrics"
	"github.com/BaSui01/roundtable/llm"
	"github.com/BaSui01/roundtable/llm/tokenizer"
	"github.com/BaSui01/roundtable/types"
	"go.uber.org/zap"
)

// =============================================================================
// 💬 对话 Handler
// =============================================================================

// ConversationHandler 管理内存中的对话：创建、开场、推进、读取与删除。
// 同一对话的推进请求经互斥锁串行化，不同对话互不影响。
type ConversationHandler struct {
	provider  llm.Provider
	defaults  config.DialogueConfig
	model     string
	collector *metrics.Collector
	logger    *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu        sync.Mutex // 串行化同一对话的推进
	orch      *dialogue.Orchestrator
	maxTurns  int
	createdAt time.Time
}

// NewConversationHandler 创建对话处理器。defaults 提供温度、token 上限
// 与回合预算的缺省值，单个请求可覆盖。
func NewConversationHandler(provider llm.Provider, model string, defaults config.DialogueConfig, collector *metrics.Collector, logger *zap.Logger) *ConversationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationHandler{
		provider:  provider,
		defaults:  defaults,
		model:     model,
		collector: collector,
		logger:    logger.With(zap.String("component", "conversation_handler")),
		sessions:  make(map[string]*session),
	}
}

// HandleCreate 处理创建对话请求
// @Summary 创建对话
// @Description 按花名册创建一个新对话，可附带开场记录
// @Tags 对话
// @Accept json
// @Produce json
// @Param request body api.CreateConversationRequest true "创建请求"
// @Success 201 {object} Response{data=api.ConversationInfo} "对话已创建"
// @Failure 400 {object} Response "无效请求"
// @Security BearerAuth
// @Router /v1/conversations [post]
func (h *ConversationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.CreateConversationRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if len(req.Speakers) == 0 {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidConfig, "at least one speaker is required", h.logger)
		return
	}
	for _, sp := range req.Speakers {
		if strings.TrimSpace(sp.Identity) == "" {
			WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidConfig, "speaker identity must not be empty", h.logger)
			return
		}
	}

	model := req.Model
	if model == "" {
		model = h.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = h.defaults.MaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = float32(h.defaults.Temperature)
	}

	roster := make([]*dialogue.Speaker, len(req.Speakers))
	for i, sp := range req.Speakers {
		roster[i] = dialogue.NewSpeaker(sp.Identity, sp.Directive, h.provider,
			dialogue.WithModel(model),
			dialogue.WithMaxTokens(maxTokens),
			dialogue.WithTemperature(temperature),
			dialogue.WithTokenCounter(tokenizer.ForModel(model)),
			dialogue.WithSpeakerMetrics(h.collector),
			dialogue.WithSpeakerLogger(h.logger),
		)
	}

	opts := []dialogue.OrchestratorOption{
		dialogue.WithLogger(h.logger),
		dialogue.WithMetrics(h.collector),
	}
	switch req.Policy {
	case "", "round_robin":
		// 默认轮询
	case "random":
		opts = append(opts, dialogue.WithPolicy(dialogue.NewRandomPolicy(req.PolicySeed)))
	default:
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidConfig, "unknown policy: "+req.Policy, h.logger)
		return
	}

	orch, err := dialogue.NewOrchestrator(roster, opts...)
	if err != nil {
		WriteError(w, types.NewError(types.ErrInvalidConfig, err.Error()).WithHTTPStatus(http.StatusBadRequest), h.logger)
		return
	}

	if req.Seed != nil {
		orch.Prime(req.Seed.Identity, req.Seed.Text)
	}

	sess := &session{
		orch:      orch,
		maxTurns:  h.defaults.MaxTurns,
		createdAt: time.Now(),
	}
	h.mu.Lock()
	h.sessions[orch.ID()] = sess
	h.mu.Unlock()

	h.logger.Info("conversation created",
		zap.String("conversation_id", orch.ID()),
		zap.Int("roster_size", len(roster)),
		zap.String("policy", req.Policy),
	)

	WriteJSON(w, http.StatusCreated, Response{
		Success:   true,
		Data:      h.info(sess),
		Timestamp: time.Now(),
	})
}

// HandleGet 处理查询对话请求
// @Summary 查询对话状态
// @Tags 对话
// @Produce json
// @Param id path string true "对话 ID"
// @Success 200 {object} Response{data=api.ConversationInfo} "对话状态"
// @Failure 404 {object} Response "对话不存在"
// @Security BearerAuth
// @Router /v1/conversations/{id} [get]
func (h *ConversationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, h.info(sess))
}

// HandlePrime 处理开场广播请求
// @Summary 广播开场记录
// @Description 把一条开场记录追加到所有发言者的记录，不推进回合
// @Tags 对话
// @Accept json
// @Produce json
// @Param id path string true "对话 ID"
// @Param request body api.PrimeRequest true "开场内容"
// @Success 200 {object} Response{data=api.ConversationInfo} "已广播"
// @Failure 404 {object} Response "对话不存在"
// @Security BearerAuth
// @Router /v1/conversations/{id}/prime [post]
func (h *ConversationHandler) HandlePrime(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.PrimeRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if req.Identity == "" || req.Text == "" {
		WriteErrorMessage(w, http.StatusBadRequest, types.ErrInvalidConfig, "identity and text are required", h.logger)
		return
	}

	sess.mu.Lock()
	sess.orch.Prime(req.Identity, req.Text)
	sess.mu.Unlock()

	WriteSuccess(w, h.info(sess))
}

// HandleAdvance 处理单回合推进请求
// @Summary 推进一个回合
// @Description 选择发言者、产出发言并广播；oracle 失败时状态不变，可重试
// @Tags 对话
// @Produce json
// @Param id path string true "对话 ID"
// @Success 200 {object} Response{data=api.TurnResult} "回合结果"
// @Failure 404 {object} Response "对话不存在"
// @Failure 502 {object} Response "oracle 不可用"
// @Security BearerAuth
// @Router /v1/conversations/{id}/advance [post]
func (h *ConversationHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	turn, err := sess.orch.Advance(r.Context())
	sess.mu.Unlock()

	if err != nil {
		h.writeAdvanceError(w, err)
		return
	}

	WriteSuccess(w, api.TurnResult{Index: turn.Index, Identity: turn.Identity, Text: turn.Text})
}

// HandleRun 处理连续推进请求
// @Summary 连续推进多个回合
// @Tags 对话
// @Accept json
// @Produce json
// @Param id path string true "对话 ID"
// @Param request body api.RunRequest true "回合数"
// @Success 200 {object} Response{data=api.RunResponse} "完成的回合"
// @Failure 404 {object} Response "对话不存在"
// @Failure 502 {object} Response "oracle 不可用"
// @Security BearerAuth
// @Router /v1/conversations/{id}/run [post]
func (h *ConversationHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.RunRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	maxTurns := req.MaxTurns
	if maxTurns <= 0 {
		maxTurns = sess.maxTurns
	}

	sess.mu.Lock()
	runner := dialogue.NewRunner(sess.orch, maxTurns, dialogue.WithRunnerLogger(h.logger))
	turns, err := runner.Run(r.Context())
	turnIndex := sess.orch.TurnIndex()
	sess.mu.Unlock()

	if err != nil {
		// 已完成的回合仍然生效，可通过 transcript 读取。
		h.writeAdvanceError(w, err)
		return
	}

	results := make([]api.TurnResult, len(turns))
	for i, t := range turns {
		results[i] = api.TurnResult{Index: t.Index, Identity: t.Identity, Text: t.Text}
	}
	WriteSuccess(w, api.RunResponse{Turns: results, TurnIndex: turnIndex})
}

// HandleTranscript 处理记录读取请求
// @Summary 读取共享记录
// @Tags 对话
// @Produce json
// @Param id path string true "对话 ID"
// @Success 200 {object} Response{data=api.TranscriptResponse} "共享记录"
// @Failure 404 {object} Response "对话不存在"
// @Security BearerAuth
// @Router /v1/conversations/{id}/transcript [get]
func (h *ConversationHandler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	sess.mu.Lock()
	entries := sess.orch.Transcript()
	sess.mu.Unlock()

	WriteSuccess(w, api.TranscriptResponse{ID: sess.orch.ID(), Entries: entries})
}

// HandleDelete 处理删除对话请求
// @Summary 删除对话
// @Tags 对话
// @Produce json
// @Param id path string true "对话 ID"
// @Success 200 {object} Response "已删除"
// @Failure 404 {object} Response "对话不存在"
// @Security BearerAuth
// @Router /v1/conversations/{id} [delete]
func (h *ConversationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	h.mu.Lock()
	_, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if !ok {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrInvalidConfig, "conversation not found", h.logger)
		return
	}

	h.logger.Info("conversation deleted", zap.String("conversation_id", id))
	WriteSuccess(w, map[string]string{"id": id})
}

// =============================================================================
// 🔧 内部辅助
// =============================================================================

// lookup 按 ID 取会话，供流式 Handler 复用。
func (h *ConversationHandler) lookup(id string) (*session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sess, ok := h.sessions[id]
	return sess, ok
}

func (h *ConversationHandler) session(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, ok := h.lookup(r.PathValue("id"))
	if !ok {
		WriteErrorMessage(w, http.StatusNotFound, types.ErrInvalidConfig, "conversation not found", h.logger)
		return nil, false
	}
	return sess, true
}

func (h *ConversationHandler) info(sess *session) api.ConversationInfo {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return api.ConversationInfo{
		ID:            sess.orch.ID(),
		Roster:        sess.orch.Roster(),
		TurnIndex:     sess.orch.TurnIndex(),
		TranscriptLen: len(sess.orch.Transcript()),
		CreatedAt:     sess.createdAt,
	}
}

func (h *ConversationHandler) writeAdvanceError(w http.ResponseWriter, err error) {
	var apiErr *types.Error
	if types.IsOracleUnavailable(err) {
		apiErr = types.NewError(types.ErrOracleUnavailable, err.Error()).
			WithRetryable(types.IsRetryable(err))
	} else {
		apiErr = types.NewError(types.ErrInvalidConfig, err.Error()).
			WithHTTPStatus(http.StatusInternalServerError)
	}
	WriteError(w, apiErr, h.logger)
}
