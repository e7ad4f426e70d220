package telemetry

import (
	"context"
	"testing"

	"github.com/BaSui01/roundtable/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit_Disabled(t *testing.T) {
	t.Parallel()
	p, err := Init(config.TelemetryConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Nil(t, p.tp)
	assert.Nil(t, p.mp)

	// noop Providers 的 Shutdown 必须安全
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestShutdown_NilReceiver(t *testing.T) {
	t.Parallel()
	var p *Providers
	assert.NoError(t, p.Shutdown(context.Background()))
}
