package roundtable

import (
	"context"
	"testing"

	"github.com/BaSui01/roundtable/dialogue"
	"github.com/BaSui01/roundtable/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoProvider struct{}

func (echoProvider) Name() string { return "echo" }

func (echoProvider) Generate(_ context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return &llm.GenerateResponse{Text: "echo", Provider: "echo"}, nil
}

func TestNew(t *testing.T) {
	t.Parallel()

	conv, err := New(
		WithProvider(echoProvider{}),
		WithSpeaker("Narrator", "narrate"),
		WithSpeaker("Hero", "act"),
		WithSeed("Narrator", "Once upon a time."),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Narrator", "Hero"}, conv.Roster())
	require.Len(t, conv.Transcript(), 1)

	turn, err := conv.Advance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hero", turn.Identity)
	assert.Equal(t, "echo", turn.Text)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(WithSpeaker("Hero", "act"))
	require.Error(t, err, "provider is required")

	_, err = New(WithProvider(echoProvider{}))
	require.Error(t, err, "at least one speaker is required")
}

func TestNew_CustomPolicy(t *testing.T) {
	t.Parallel()

	conv, err := New(
		WithProvider(echoProvider{}),
		WithSpeaker("A", "a"),
		WithSpeaker("B", "b"),
		WithSpeaker("C", "c"),
		WithPolicy(dialogue.NewRandomPolicy(7)),
	)
	require.NoError(t, err)

	turn, err := conv.Advance(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []string{"A", "B", "C"}, turn.Identity)
}
