package dialogue

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestRoundRobinPolicy(t *testing.T) {
	t.Parallel()

	p := RoundRobinPolicy{}
	assert.Equal(t, 1, p.Next(0, 2))
	assert.Equal(t, 0, p.Next(1, 2))
	assert.Equal(t, 0, p.Next(0, 1))
	assert.Equal(t, 2, p.Next(1, 3))
	assert.Equal(t, 0, p.Next(2, 3))
}

func TestProperty_RoundRobinPolicy(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("selection stays within the roster", prop.ForAll(
		func(turnIndex, rosterSize int) bool {
			idx := RoundRobinPolicy{}.Next(turnIndex, rosterSize)
			return idx >= 0 && idx < rosterSize
		},
		gen.IntRange(0, 1<<30),
		gen.IntRange(1, 64),
	))

	properties.Property("every roster slot speaks once per cycle", prop.ForAll(
		func(start, rosterSize int) bool {
			seen := make(map[int]bool, rosterSize)
			for i := 0; i < rosterSize; i++ {
				seen[RoundRobinPolicy{}.Next(start+i, rosterSize)] = true
			}
			return len(seen) == rosterSize
		},
		gen.IntRange(0, 1<<20),
		gen.IntRange(1, 16),
	))

	properties.Property("consecutive turns never repeat a speaker when roster > 1", prop.ForAll(
		func(turnIndex, rosterSize int) bool {
			p := RoundRobinPolicy{}
			return p.Next(turnIndex, rosterSize) != p.Next(turnIndex+1, rosterSize)
		},
		gen.IntRange(0, 1<<20),
		gen.IntRange(2, 16),
	))

	properties.TestingRun(t)
}

func TestRandomPolicy(t *testing.T) {
	t.Parallel()

	t.Run("stays within roster", func(t *testing.T) {
		t.Parallel()
		p := NewRandomPolicy(42)
		for i := 0; i < 100; i++ {
			idx := p.Next(i, 3)
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 3)
		}
	})

	t.Run("same seed replays the same order", func(t *testing.T) {
		t.Parallel()
		a, b := NewRandomPolicy(7), NewRandomPolicy(7)
		for i := 0; i < 50; i++ {
			assert.Equal(t, a.Next(i, 5), b.Next(i, 5))
		}
	})
}
