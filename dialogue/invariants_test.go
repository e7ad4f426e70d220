package dialogue

import (
	"context"
	"fmt"
	"testing"

	"github.com/BaSui01/roundtable/types"
	"pgregory.net/rapid"
)

// 任意花名册、任意回合数（含随机失败）之后，所有发言者的记录
// 必须逐条相同，且回合计数等于成功回合数。
func TestProperty_TranscriptConvergence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rosterSize := rapid.IntRange(1, 5).Draw(rt, "rosterSize")
		turnCount := rapid.IntRange(0, 12).Draw(rt, "turnCount")

		roster := make([]*Speaker, rosterSize)
		oracles := make([]*stubOracle, rosterSize)
		for i := 0; i < rosterSize; i++ {
			script := make([]string, turnCount)
			for j := range script {
				script[j] = fmt.Sprintf("speaker %d reply %d", i, j)
			}
			oracles[i] = newStubOracle(script...)
			roster[i] = NewSpeaker(fmt.Sprintf("S%d", i), "directive", oracles[i])
		}

		orch, err := NewOrchestrator(roster)
		if err != nil {
			rt.Fatalf("NewOrchestrator: %v", err)
		}
		if rapid.Bool().Draw(rt, "primed") {
			orch.Prime("System", "opening")
		}

		succeeded := 0
		for i := 0; i < turnCount; i++ {
			// 随机让被选中的发言者本回合失败。
			fail := rapid.Bool().Draw(rt, fmt.Sprintf("fail_%d", i))
			idx := RoundRobinPolicy{}.Next(orch.TurnIndex(), rosterSize)
			if fail {
				oracles[idx].errs[oracles[idx].calls] = types.NewError(types.ErrOracleUnavailable, "injected")
			}

			before := orch.TurnIndex()
			turn, err := orch.Advance(context.Background())
			if fail {
				if err == nil {
					rt.Fatalf("turn %d: expected injected failure", i)
				}
				if orch.TurnIndex() != before {
					rt.Fatalf("turn %d: counter advanced on failure", i)
				}
			} else {
				if err != nil {
					rt.Fatalf("turn %d: unexpected error: %v", i, err)
				}
				if turn.Index != before || orch.TurnIndex() != before+1 {
					rt.Fatalf("turn %d: counter not monotonic: turn=%d before=%d after=%d",
						i, turn.Index, before, orch.TurnIndex())
				}
				if turn.Identity != roster[idx].Identity() {
					rt.Fatalf("turn %d: expected speaker %s, got %s", i, roster[idx].Identity(), turn.Identity)
				}
				succeeded++
			}

			// 每个回合之后（无论成败）记录都必须收敛。
			ref := roster[0].Transcript()
			for _, sp := range roster[1:] {
				if !types.TranscriptsEqual(ref, sp.Transcript()) {
					rt.Fatalf("turn %d: transcripts diverged between S0 and %s", i, sp.Identity())
				}
			}
		}

		if orch.TurnIndex() != succeeded {
			rt.Fatalf("turn counter %d != successful turns %d", orch.TurnIndex(), succeeded)
		}
	})
}

// 相同的花名册、策略与 oracle 脚本必须产生相同的回合序列。
func TestProperty_DeterministicReplay(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rosterSize := rapid.IntRange(1, 4).Draw(rt, "rosterSize")
		turnCount := rapid.IntRange(1, 8).Draw(rt, "turnCount")
		seed := rapid.Int64().Draw(rt, "seed")

		run := func() []Turn {
			roster := make([]*Speaker, rosterSize)
			for i := range roster {
				script := make([]string, turnCount)
				for j := range script {
					script[j] = fmt.Sprintf("reply %d/%d", i, j)
				}
				roster[i] = NewSpeaker(fmt.Sprintf("S%d", i), "d", newStubOracle(script...))
			}
			orch, err := NewOrchestrator(roster, WithPolicy(NewRandomPolicy(seed)))
			if err != nil {
				rt.Fatalf("NewOrchestrator: %v", err)
			}
			turns := make([]Turn, 0, turnCount)
			for i := 0; i < turnCount; i++ {
				turn, err := orch.Advance(context.Background())
				if err != nil {
					rt.Fatalf("Advance: %v", err)
				}
				turns = append(turns, *turn)
			}
			return turns
		}

		first, second := run(), run()
		for i := range first {
			if first[i] != second[i] {
				rt.Fatalf("replay diverged at turn %d: %+v vs %+v", i, first[i], second[i])
			}
		}
	})
}
