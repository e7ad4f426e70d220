package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCollector_RecordTurn(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	c := NewCollector("roundtable", reg, zap.NewNop())

	c.RecordTurn("conv-1", "Hero", 120*time.Millisecond, 2)
	c.RecordTurn("conv-1", "Hero", 80*time.Millisecond, 3)
	c.RecordTurn("conv-1", "Narrator", 200*time.Millisecond, 4)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.turnsTotal.WithLabelValues("conv-1", "Hero")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.turnsTotal.WithLabelValues("conv-1", "Narrator")))
	assert.Equal(t, float64(4), testutil.ToFloat64(c.transcriptEntries.WithLabelValues("conv-1")))
}

func TestCollector_RecordTurnFailure(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	c := NewCollector("roundtable", reg, zap.NewNop())

	c.RecordTurnFailure("conv-1", "Hero")
	assert.Equal(t, float64(1), testutil.ToFloat64(c.turnFailures.WithLabelValues("conv-1", "Hero")))
}

func TestCollector_RecordOracleRequest(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	c := NewCollector("roundtable", reg, zap.NewNop())

	c.RecordOracleRequest("openai-compat", 50*time.Millisecond, nil)
	c.RecordOracleRequest("openai-compat", 50*time.Millisecond, errors.New("boom"))

	assert.Equal(t, float64(1), testutil.ToFloat64(c.oracleRequestsTotal.WithLabelValues("openai-compat", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.oracleRequestsTotal.WithLabelValues("openai-compat", "failure")))
}
