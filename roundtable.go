// Package roundtable provides a top-level convenience entry point for
// assembling turn-based conversations with minimal boilerplate.
//
// Usage:
//
//	import "github.com/BaSui01/roundtable"
//
//	conv, err := roundtable.New(
//	    roundtable.WithOpenAI("gpt-4o-mini"),
//	    roundtable.WithSpeaker("Narrator", "You narrate a fantasy quest."),
//	    roundtable.WithSpeaker("Hero", "You are the quest's hero."),
//	    roundtable.WithSeed("Narrator", "You stand at a crossroads."),
//	)
//
// The returned [dialogue.Orchestrator] is ready to Advance. Use the
// dialogue package directly when you need per-speaker providers or
// custom decorators.
package roundtable

import (
	"fmt"
	"os"

	"github.com/BaSui01/roundtable/dialogue"
	"github.com/BaSui01/roundtable/llm"
	"github.com/BaSui01/roundtable/llm/providers"
	"github.com/BaSui01/roundtable/llm/providers/claude"
	"github.com/BaSui01/roundtable/llm/providers/openaicompat"
	"go.uber.org/zap"
)

type speakerSpec struct {
	identity  string
	directive string
}

type options struct {
	provider     llm.Provider
	providerKind string
	apiKey       string
	model        string
	logger       *zap.Logger
	policy       dialogue.SelectionPolicy
	speakers     []speakerSpec
	seedIdentity string
	seedText     string
}

// Option configures the conversation created by [New].
type Option func(*options)

// WithProvider sets a pre-built oracle provider.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithOpenAI uses an OpenAI provider. API key from OPENAI_API_KEY env
// unless overridden via [WithAPIKey].
func WithOpenAI(model string) Option {
	return func(o *options) {
		o.providerKind = "openai"
		o.model = model
	}
}

// WithClaude uses an Anthropic Claude provider. API key from
// ANTHROPIC_API_KEY env unless overridden via [WithAPIKey].
func WithClaude(model string) Option {
	return func(o *options) {
		o.providerKind = "claude"
		o.model = model
	}
}

// WithAPIKey overrides the API key for provider shortcuts.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithSpeaker appends a speaker to the roster. Roster order is broadcast
// order and the order the selection policy indexes into.
func WithSpeaker(identity, directive string) Option {
	return func(o *options) {
		o.speakers = append(o.speakers, speakerSpec{identity: identity, directive: directive})
	}
}

// WithSeed primes the conversation with an opening utterance.
func WithSeed(identity, text string) Option {
	return func(o *options) {
		o.seedIdentity = identity
		o.seedText = text
	}
}

// WithPolicy overrides the default round-robin selection policy.
func WithPolicy(p dialogue.SelectionPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New assembles a conversation. At minimum, a provider (via [WithOpenAI],
// [WithClaude], or [WithProvider]) and one speaker must be given.
func New(opts ...Option) (*dialogue.Orchestrator, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := o.buildProvider(logger)
	if err != nil {
		return nil, err
	}
	if len(o.speakers) == 0 {
		return nil, fmt.Errorf("roundtable: at least one speaker is required")
	}

	roster := make([]*dialogue.Speaker, len(o.speakers))
	for i, sp := range o.speakers {
		roster[i] = dialogue.NewSpeaker(sp.identity, sp.directive, provider,
			dialogue.WithModel(o.model),
			dialogue.WithSpeakerLogger(logger),
		)
	}

	orchOpts := []dialogue.OrchestratorOption{dialogue.WithLogger(logger)}
	if o.policy != nil {
		orchOpts = append(orchOpts, dialogue.WithPolicy(o.policy))
	}

	orch, err := dialogue.NewOrchestrator(roster, orchOpts...)
	if err != nil {
		return nil, err
	}

	if o.seedText != "" {
		orch.Prime(o.seedIdentity, o.seedText)
	}
	return orch, nil
}

func (o *options) buildProvider(logger *zap.Logger) (llm.Provider, error) {
	if o.provider != nil {
		return o.provider, nil
	}

	switch o.providerKind {
	case "openai":
		key := o.apiKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("roundtable: OPENAI_API_KEY not set")
		}
		return openaicompat.New(providers.OpenAICompatConfig{
			BaseProviderConfig: providers.BaseProviderConfig{APIKey: key, Model: o.model},
		}, logger), nil
	case "claude":
		key := o.apiKey
		if key == "" {
			key = os.Getenv("ANTHROPIC_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("roundtable: ANTHROPIC_API_KEY not set")
		}
		return claude.New(providers.ClaudeConfig{
			BaseProviderConfig: providers.BaseProviderConfig{APIKey: key, Model: o.model},
		}, logger), nil
	case "":
		return nil, fmt.Errorf("roundtable: a provider is required (WithOpenAI, WithClaude, or WithProvider)")
	default:
		return nil, fmt.Errorf("roundtable: unknown provider kind %q", o.providerKind)
	}
}
