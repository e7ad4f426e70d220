package dialogue

import (
	"context"
	"testing"

	"github.com/BaSui01/roundtable/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrchestratorValidation(t *testing.T) {
	t.Parallel()

	t.Run("empty roster", func(t *testing.T) {
		t.Parallel()
		_, err := NewOrchestrator(nil)
		require.Error(t, err)
	})

	t.Run("duplicate identity", func(t *testing.T) {
		t.Parallel()
		_, err := NewOrchestrator([]*Speaker{
			NewSpeaker("Hero", "a", newStubOracle()),
			NewSpeaker("Hero", "b", newStubOracle()),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Hero")
	})

	t.Run("single speaker is fine", func(t *testing.T) {
		t.Parallel()
		o, err := NewOrchestrator([]*Speaker{NewSpeaker("Solo", "d", newStubOracle())})
		require.NoError(t, err)
		assert.Equal(t, []string{"Solo"}, o.Roster())
	})
}

// 两人桌面冒险：旁白开场，轮询策略让英雄先答话。
func TestQuestDialogue(t *testing.T) {
	t.Parallel()

	narratorOracle := newStubOracle("The northern path narrows into a dark forest.")
	heroOracle := newStubOracle("I go north.", "I light a torch and press on.")

	narrator := NewSpeaker("Narrator", "You narrate a fantasy quest.", narratorOracle)
	hero := NewSpeaker("Hero", "You are the quest's hero.", heroOracle)

	orch, err := NewOrchestrator([]*Speaker{narrator, hero})
	require.NoError(t, err)

	orch.Prime("Narrator", "You stand at a crossroads. North or south?")
	assert.Equal(t, 0, orch.TurnIndex(), "priming does not advance the turn counter")
	assert.Equal(t, 1, narrator.TranscriptLen())
	assert.Equal(t, 1, hero.TranscriptLen())

	ctx := context.Background()

	// 回合 0：(0+1) % 2 = 1 → Hero。
	turn, err := orch.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Turn{Index: 0, Identity: "Hero", Text: "I go north."}, turn)
	assert.Equal(t, 1, orch.TurnIndex())

	// Hero 看到的叙事包含开场记录与行动提示。
	require.Len(t, heroOracle.requests, 1)
	assert.Equal(t,
		"Here is the conversation so far."+
			"\nNarrator: You stand at a crossroads. North or south?"+
			"\nHero:",
		heroOracle.requests[0].Content)

	// 回合 1：(1+1) % 2 = 0 → Narrator，此前的发言对双方都可见。
	turn, err = orch.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Narrator", turn.Identity)
	assert.Equal(t, 1, turn.Index)

	require.Len(t, narratorOracle.requests, 1)
	assert.Equal(t,
		"Here is the conversation so far."+
			"\nNarrator: You stand at a crossroads. North or south?"+
			"\nHero: I go north."+
			"\nNarrator:",
		narratorOracle.requests[0].Content)

	// 回合 2：再回到 Hero。
	turn, err = orch.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hero", turn.Identity)

	// 每个回合之后所有发言者的记录都逐条相同。
	assert.True(t, types.TranscriptsEqual(narrator.Transcript(), hero.Transcript()))
	assert.Equal(t, 4, narrator.TranscriptLen())
}

func TestRoundRobinSpeakingOrder(t *testing.T) {
	t.Parallel()

	a := NewSpeaker("A", "d", newStubOracle("a1", "a2"))
	b := NewSpeaker("B", "d", newStubOracle("b1", "b2"))
	orch, err := NewOrchestrator([]*Speaker{a, b})
	require.NoError(t, err)

	var order []string
	for i := 0; i < 4; i++ {
		turn, err := orch.Advance(context.Background())
		require.NoError(t, err)
		order = append(order, turn.Identity)
	}
	assert.Equal(t, []string{"B", "A", "B", "A"}, order)
}

func TestAdvanceFailureIsAtomic(t *testing.T) {
	t.Parallel()

	narrator := NewSpeaker("Narrator", "d", newStubOracle("The forest thins."))
	// 首次调用失败，重试后才给出回复。
	heroOracle := newStubOracle("", "I go north.")
	heroOracle.errs[0] = types.NewError(types.ErrOracleUnavailable, "upstream timeout").WithRetryable(true)
	hero := NewSpeaker("Hero", "d", heroOracle)

	orch, err := NewOrchestrator([]*Speaker{narrator, hero})
	require.NoError(t, err)
	orch.Prime("Narrator", "A crossroads.")

	before := narrator.Transcript()

	_, err = orch.Advance(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsOracleUnavailable(err))

	// 失败后计数与所有记录保持原状。
	assert.Equal(t, 0, orch.TurnIndex())
	assert.True(t, types.TranscriptsEqual(before, narrator.Transcript()))
	assert.True(t, types.TranscriptsEqual(before, hero.Transcript()))

	// 重试同一回合直接成功，回合号不跳。
	turn, err := orch.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, turn.Index)
	assert.Equal(t, "Hero", turn.Identity)
	assert.Equal(t, 1, orch.TurnIndex())
	assert.True(t, types.TranscriptsEqual(narrator.Transcript(), hero.Transcript()))
}

func TestPrimeAcceptsExternalIdentity(t *testing.T) {
	t.Parallel()

	a := NewSpeaker("A", "d", newStubOracle())
	b := NewSpeaker("B", "d", newStubOracle())
	orch, err := NewOrchestrator([]*Speaker{a, b})
	require.NoError(t, err)

	// 开场身份不必在花名册内，比如系统旁白。
	orch.Prime("System", "Welcome to the roundtable.")
	orch.Prime("System", "Be concise.")

	require.Equal(t, 2, a.TranscriptLen())
	assert.True(t, types.TranscriptsEqual(a.Transcript(), b.Transcript()))
	assert.Equal(t, types.NewEntry("System", "Welcome to the roundtable."), a.Transcript()[0])
}

type badPolicy struct{}

func (badPolicy) Next(int, int) int { return 99 }

func TestAdvanceRejectsOutOfRangePolicy(t *testing.T) {
	t.Parallel()

	a := NewSpeaker("A", "d", newStubOracle("x"))
	orch, err := NewOrchestrator([]*Speaker{a}, WithPolicy(badPolicy{}))
	require.NoError(t, err)

	_, err = orch.Advance(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, orch.TurnIndex())
	assert.Equal(t, 0, a.TranscriptLen())
}

func TestOrchestratorIDsAreUnique(t *testing.T) {
	t.Parallel()

	mk := func() *Orchestrator {
		o, err := NewOrchestrator([]*Speaker{NewSpeaker("A", "d", newStubOracle())})
		require.NoError(t, err)
		return o
	}
	assert.NotEqual(t, mk().ID(), mk().ID())
}
