// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 回合指标
	turnsTotal        *prometheus.CounterVec
	turnDuration      *prometheus.HistogramVec
	turnFailures      *prometheus.CounterVec
	transcriptEntries *prometheus.GaugeVec

	// Oracle 指标
	oracleRequestsTotal   *prometheus.CounterVec
	oracleRequestDuration *prometheus.HistogramVec
	promptTokens          *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器，使用给定的 registerer。
// 传入 nil 时注册到 prometheus 默认注册表。
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.turnsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogue_turns_total",
			Help:      "Total number of completed dialogue turns",
		},
		[]string{"conversation", "identity"},
	)

	c.turnDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dialogue_turn_duration_seconds",
			Help:      "Dialogue turn duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"conversation", "identity"},
	)

	c.turnFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dialogue_turn_failures_total",
			Help:      "Total number of turns aborted by oracle failure",
		},
		[]string{"conversation", "identity"},
	)

	c.transcriptEntries = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dialogue_transcript_entries",
			Help:      "Current number of entries in the shared transcript",
		},
		[]string{"conversation"},
	)

	c.oracleRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_requests_total",
			Help:      "Total number of oracle calls",
		},
		[]string{"provider", "outcome"},
	)

	c.oracleRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_request_duration_seconds",
			Help:      "Oracle call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider"},
	)

	c.promptTokens = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_prompt_tokens",
			Help:      "Token count of rendered narratives sent to the oracle",
			Buckets:   []float64{64, 128, 256, 512, 1024, 2048, 4096, 8192},
		},
		[]string{"identity"},
	)

	return c
}

// RecordHTTPRequest 记录一次 HTTP 请求。
func (c *Collector) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTurn 记录一个完成的回合。
func (c *Collector) RecordTurn(conversation, identity string, duration time.Duration, transcriptLen int) {
	c.turnsTotal.WithLabelValues(conversation, identity).Inc()
	c.turnDuration.WithLabelValues(conversation, identity).Observe(duration.Seconds())
	c.transcriptEntries.WithLabelValues(conversation).Set(float64(transcriptLen))
}

// RecordTurnFailure 记录一个被 oracle 失败中止的回合。
func (c *Collector) RecordTurnFailure(conversation, identity string) {
	c.turnFailures.WithLabelValues(conversation, identity).Inc()
}

// RecordOracleRequest 记录一次 oracle 调用。
func (c *Collector) RecordOracleRequest(provider string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.oracleRequestsTotal.WithLabelValues(provider, outcome).Inc()
	c.oracleRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordPromptTokens 记录某个发言者一次渲染叙事的 token 数。
func (c *Collector) RecordPromptTokens(identity string, tokens int) {
	c.promptTokens.WithLabelValues(identity).Observe(float64(tokens))
}
