package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BaSui01/roundtable/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 6, cfg.Dialogue.MaxTurns)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
dialogue:
  max_turns: 12
  seed:
    identity: Narrator
    text: Begin the quest.
  speakers:
    - identity: Narrator
      directive: You narrate the adventure.
    - identity: Hero
      directive: You are the hero.
llm:
  provider: claude
  model: claude-sonnet-4-5
  timeout: 90s
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Dialogue.MaxTurns)
	assert.Equal(t, "Narrator", cfg.Dialogue.Seed.Identity)
	require.Len(t, cfg.Dialogue.Speakers, 2)
	assert.Equal(t, "Hero", cfg.Dialogue.Speakers[1].Identity)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	// 未覆盖的字段保留默认值
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ROUNDTABLE_LLM_MODEL", "gpt-4o")
	t.Setenv("ROUNDTABLE_DIALOGUE_MAX_TURNS", "3")
	t.Setenv("ROUNDTABLE_LLM_TIMEOUT", "30s")
	t.Setenv("ROUNDTABLE_TELEMETRY_ENABLED", "true")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Dialogue.MaxTurns)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestValidate_DuplicateIdentity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dialogue.Speakers = []SpeakerConfig{
		{Identity: "Hero", Directive: "a"},
		{Identity: "Hero", Directive: "b"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidConfig, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "duplicate speaker identity")
}

func TestValidate_BadTurnBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dialogue.MaxTurns = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_turns")
}
