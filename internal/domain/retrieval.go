package domain

import "context"

// ScoredChunk is one retrieval hit. Higher score means more similar.
type ScoredChunk struct {
	Text  string            `json:"text"`
	Meta  map[string]string `json:"metadata,omitempty"`
	Score float64           `json:"score"`
}

// RetrievalIndex is the nearest-neighbor chunk store. Query returns at most k
// chunks, best match first; equal scores keep insertion order.
type RetrievalIndex interface {
	Store(ctx context.Context, chunks []string) ([]string, error)
	Query(ctx context.Context, text string, k int) ([]ScoredChunk, error)
}

// CheckpointStore is the durable per-channel ingestion cursor. At most one
// record per channel; Upsert replaces, never appends.
type CheckpointStore interface {
	Upsert(ctx context.Context, channelID string, messageID int64) error
	Get(ctx context.Context, channelID string) (int64, bool, error)
}
