package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// Result is a completed generation with its accounting metadata.
type Result struct {
	Content          string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
	TokensUsed       int
	QualityScore     float64
	ModelUsed        string
}

// Delta is one fragment of a streamed generation. Err is set at most once,
// on the final delta, when the stream ended abnormally.
type Delta struct {
	Content string
	Done    bool
	Err     error
}

// Provider defines the contract for any LLM backend
type Provider interface {
	// Chat sends a chat history to the model and returns the full response.
	Chat(ctx context.Context, history []Message, options ...Option) (*Result, error)

	// ChatStream sends a chat history and returns deltas as they arrive.
	// The channel is closed after the Done delta.
	ChatStream(ctx context.Context, history []Message, options ...Option) (<-chan Delta, error)
}
