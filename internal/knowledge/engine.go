package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"buddybot/internal/domain"
)

// Engine is the offline indexing pipeline: corpus → chunks → retrieval index.
type Engine struct {
	chunker *Chunker
	index   domain.RetrievalIndex
	logger  *slog.Logger
}

type EngineConfig struct {
	ChunkSize int // runes per chunk (default 1000)
	Overlap   int // runes shared between consecutive chunks (default 200)
	Index     domain.RetrievalIndex
	Logger    *slog.Logger
}

func NewEngine(cfg EngineConfig) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Engine{
		chunker: NewChunker(cfg.ChunkSize, cfg.Overlap),
		index:   cfg.Index,
		logger:  cfg.Logger,
	}
}

// BuildIndex chunks the corpus and stores every chunk in the retrieval index.
// Returns the number of chunks stored.
func (e *Engine) BuildIndex(ctx context.Context, corpus domain.Corpus) (int, error) {
	chunks := e.chunker.Split(corpus)
	if len(chunks) == 0 {
		e.logger.Warn("corpus produced no chunks, nothing to index")
		return 0, nil
	}

	ids, err := e.index.Store(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	e.logger.Info("index built", "messages", len(corpus), "chunks", len(ids))
	return len(ids), nil
}
