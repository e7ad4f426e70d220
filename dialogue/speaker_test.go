package dialogue

import (
	"context"
	"errors"
	"testing"

	"github.com/BaSui01/roundtable/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeakerRenderNarrative(t *testing.T) {
	t.Parallel()

	oracle := newStubOracle("reply")
	hero := NewSpeaker("Hero", "You are a brave adventurer.", oracle,
		WithModel("gpt-4o-mini"),
		WithMaxTokens(256),
		WithTemperature(0.7),
	)
	hero.Absorb("Narrator", "You stand at a crossroads.")
	hero.Absorb("Hero", "I look around.")

	_, err := hero.Produce(context.Background())
	require.NoError(t, err)

	require.Len(t, oracle.requests, 1)
	req := oracle.requests[0]
	assert.Equal(t, "You are a brave adventurer.", req.Directive)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 256, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)

	want := "Here is the conversation so far." +
		"\nNarrator: You stand at a crossroads." +
		"\nHero: I look around." +
		"\nHero:"
	assert.Equal(t, want, req.Content)
}

func TestSpeakerEmptyTranscriptNarrative(t *testing.T) {
	t.Parallel()

	oracle := newStubOracle("reply")
	s := NewSpeaker("Hero", "directive", oracle)

	_, err := s.Produce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Here is the conversation so far.\nHero:", oracle.requests[0].Content)
}

func TestSpeakerAbsorbAppendOnly(t *testing.T) {
	t.Parallel()

	s := NewSpeaker("Hero", "directive", newStubOracle())

	// 重复条目与花名册外身份都照常追加，不做任何校验。
	s.Absorb("Narrator", "Hello.")
	s.Absorb("Narrator", "Hello.")
	s.Absorb("Stranger", "Who goes there?")

	got := s.Transcript()
	require.Len(t, got, 3)
	assert.Equal(t, types.NewEntry("Narrator", "Hello."), got[0])
	assert.Equal(t, types.NewEntry("Narrator", "Hello."), got[1])
	assert.Equal(t, types.NewEntry("Stranger", "Who goes there?"), got[2])
}

func TestSpeakerProduceDoesNotSelfAppend(t *testing.T) {
	t.Parallel()

	s := NewSpeaker("Hero", "directive", newStubOracle("I go north."))
	s.Absorb("Narrator", "A door opens.")

	text, err := s.Produce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "I go north.", text)
	assert.Equal(t, 1, s.TranscriptLen(), "Produce must not write the speaker's own transcript")
}

func TestSpeakerProduceReturnsVerbatimText(t *testing.T) {
	t.Parallel()

	s := NewSpeaker("Hero", "directive", newStubOracle("  spaced out\n"))
	text, err := s.Produce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "  spaced out\n", text)
}

func TestSpeakerProduceWrapsForeignError(t *testing.T) {
	t.Parallel()

	oracle := newStubOracle()
	oracle.errs[0] = errors.New("connection reset")
	s := NewSpeaker("Hero", "directive", oracle)

	_, err := s.Produce(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsOracleUnavailable(err))
}

func TestSpeakerProducePassesThroughOracleError(t *testing.T) {
	t.Parallel()

	oracle := newStubOracle()
	oracleErr := types.NewError(types.ErrOracleUnavailable, "rate limited").WithRetryable(true)
	oracle.errs[0] = oracleErr
	s := NewSpeaker("Hero", "directive", oracle)

	_, err := s.Produce(context.Background())
	require.ErrorIs(t, err, oracleErr)
	assert.True(t, types.IsRetryable(err))
}

func TestSpeakerTranscriptIsACopy(t *testing.T) {
	t.Parallel()

	s := NewSpeaker("Hero", "directive", newStubOracle())
	s.Absorb("Narrator", "original")

	copied := s.Transcript()
	copied[0].Text = "mutated"
	assert.Equal(t, "original", s.Transcript()[0].Text)
}
