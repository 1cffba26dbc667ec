// Package agent implements the retrieval-augmented conversation agent: query
// reformulation, retrieval, context summarization and memory-windowed
// response generation.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"buddybot/internal/domain"
)

const (
	defaultTemperature = 0.7
	defaultSearchK     = 10
)

// Response is the result of one completed turn. ChatHistory is the memory
// window as it was when the turn started, Context the summarized retrieval
// output ("" when no index is configured).
type Response struct {
	Answer      string `json:"answer"`
	ChatHistory string `json:"chat_history"`
	Context     string `json:"context"`
}

// Buddy answers incoming messages. Turns within one Buddy are serialized;
// independent sessions use independent Buddy instances.
type Buddy struct {
	completer domain.Completer
	index     domain.RetrievalIndex // nil disables retrieval entirely
	persona   Persona
	logger    *slog.Logger

	reformulate bool
	temperature float64
	model       string
	searchK     int

	mu     sync.Mutex
	window *Window
}

type BuddyConfig struct {
	Completer domain.Completer
	Index     domain.RetrievalIndex // optional
	Persona   Persona
	Logger    *slog.Logger

	Reformulate bool    // rewrite the incoming message into search keywords
	MemoryTurns int     // window size K
	Temperature float64
	Model       string
	SearchK     int // retrieval fan-out
}

func NewBuddy(cfg BuddyConfig) *Buddy {
	if cfg.Persona.Name == "" {
		cfg.Persona = DefaultPersona()
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.SearchK <= 0 {
		cfg.SearchK = defaultSearchK
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Buddy{
		completer:   cfg.Completer,
		index:       cfg.Index,
		persona:     cfg.Persona,
		logger:      cfg.Logger,
		reformulate: cfg.Reformulate,
		temperature: cfg.Temperature,
		model:       cfg.Model,
		searchK:     cfg.SearchK,
		window:      NewWindow(cfg.MemoryTurns),
	}
}

// Persona returns the persona the agent speaks as.
func (b *Buddy) Persona() Persona { return b.persona }

// MemoryLen reports the number of turns currently held in the window.
func (b *Buddy) MemoryLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.window.Len()
}

// Reply runs one turn of the conversation state machine. On any error the
// memory window is left untouched: a failed turn never happened.
func (b *Buddy) Reply(ctx context.Context, humanMessage string) (*Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	contextText, err := b.buildContext(ctx, humanMessage)
	if err != nil {
		return nil, err
	}

	chatHistory := b.window.Render(b.persona.HumanPrefix, b.persona.AIPrefix)

	answer, err := b.complete(ctx, answerPrompt(b.persona, humanMessage, contextText, chatHistory))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	b.window.Add(humanMessage, answer)

	return &Response{
		Answer:      answer,
		ChatHistory: chatHistory,
		Context:     contextText,
	}, nil
}

// buildContext performs retrieval and summarization. With no index configured
// it returns "" without making any external call.
func (b *Buddy) buildContext(ctx context.Context, humanMessage string) (string, error) {
	if b.index == nil {
		return "", nil
	}

	query := humanMessage
	if b.reformulate {
		reformed, err := b.complete(ctx, queryPrompt(humanMessage))
		if err != nil {
			// Optional step: fall back to the raw message.
			b.logger.Warn("query reformulation failed, using raw message", "err", err)
		} else if reformed = strings.TrimSpace(reformed); reformed != "" {
			query = reformed
			b.logger.Debug("query reformulated", "query", query)
		}
	}

	hits, err := b.index.Query(ctx, query, b.searchK)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}
	if len(hits) == 0 {
		return "", nil
	}

	texts := make([]string, len(hits))
	for i, hit := range hits {
		texts[i] = hit.Text
	}

	summary, err := b.complete(ctx, summaryPrompt(strings.Join(texts, "\n\n")))
	if err != nil {
		return "", fmt.Errorf("summarize context: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

func (b *Buddy) complete(ctx context.Context, prompt string) (string, error) {
	return b.completer.Complete(ctx, domain.CompletionRequest{
		Prompt:      prompt,
		Temperature: b.temperature,
		Model:       b.model,
	})
}
