// Package provider implements the LLM-facing contracts (completion and
// embedding) against OpenAI-compatible HTTP APIs.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"buddybot/internal/domain"
)

const defaultHTTPTimeout = 120 * time.Second

// OpenAI implements domain.Completer and domain.Embedder against an
// OpenAI-compatible API.
type OpenAI struct {
	apiKey         string
	apiBase        string
	model          string
	embeddingModel string
	client         *http.Client
	logger         *slog.Logger
}

type OpenAIConfig struct {
	APIKey         string
	APIBase        string
	Model          string
	EmbeddingModel string
	Logger         *slog.Logger
}

func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &OpenAI{
		apiKey:         cfg.APIKey,
		apiBase:        cfg.APIBase,
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		client:         SharedHTTPClient(defaultHTTPTimeout),
		logger:         cfg.Logger,
	}
}

type oaiRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
}

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiResponse struct {
	Choices []oaiChoice `json:"choices"`
}

type oaiChoice struct {
	Message oaiMessage `json:"message"`
}

// Complete sends one prompt as a single user message and returns the model's
// text.
func (o *OpenAI) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = o.model
	}

	body := oaiRequest{
		Model:    model,
		Messages: []oaiMessage{{Role: "user", Content: req.Prompt}},
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	var out oaiResponse
	if err := o.post(ctx, "/chat/completions", body, &out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openai: empty choices for model %s", model)
	}
	return out.Choices[0].Message.Content, nil
}

type oaiEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type oaiEmbeddingResponse struct {
	Data []oaiEmbedding `json:"data"`
}

type oaiEmbedding struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// Embed returns one vector per input text, in input order.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out oaiEmbeddingResponse
	err := o.post(ctx, "/embeddings", oaiEmbeddingRequest{Model: o.embeddingModel, Input: texts}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("openai: got %d embeddings for %d inputs", len(out.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (o *OpenAI) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", o.apiBase+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openai %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
