package domain

import "context"

// CompletionRequest is one prompt sent to an LLM provider. The agent builds
// three kinds of prompts (query reformulation, context summarization,
// persona response); the provider treats them all the same.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	Model       string
	MaxTokens   int
}

// Completer is the LLM provider contract: one prompt in, one text out.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Embedder turns texts into embedding vectors, one vector per input, in
// input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}
