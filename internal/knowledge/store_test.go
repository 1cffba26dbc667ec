package knowledge

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

// fakeEmbedder maps known texts to fixed unit vectors so similarity ordering
// is predictable.
type fakeEmbedder struct {
	vectors map[string][]float32
	deflt   []float32
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = f.deflt
		}
	}
	return out, nil
}

func testIndex(t *testing.T, embedder *fakeEmbedder) *SQLiteIndex {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	idx, err := NewSQLiteIndex(SQLiteIndexConfig{
		DBPath:   filepath.Join(t.TempDir(), "index.db"),
		Embedder: embedder,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestSQLiteIndex_StoreReturnsOrderedIDs(t *testing.T) {
	embedder := &fakeEmbedder{deflt: []float32{1, 0, 0}}
	idx := testIndex(t, embedder)

	ids, err := idx.Store(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	if ids[0] == ids[1] || ids[1] == ids[2] {
		t.Errorf("ids must be distinct: %v", ids)
	}
}

func TestSQLiteIndex_QueryRanksBySimilarity(t *testing.T) {
	embedder := &fakeEmbedder{
		vectors: map[string][]float32{
			"cats are great":     {1, 0, 0},
			"dogs are loud":      {0, 1, 0},
			"the stock market":   {0, 0, 1},
			"tell me about cats": {0.9, 0.1, 0},
		},
	}
	idx := testIndex(t, embedder)

	if _, err := idx.Store(context.Background(), []string{"dogs are loud", "cats are great", "the stock market"}); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	hits, err := idx.Query(context.Background(), "tell me about cats", 2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Text != "cats are great" {
		t.Errorf("best hit should be the cat chunk, got %q (score %f)", hits[0].Text, hits[0].Score)
	}
	if hits[0].Score < hits[1].Score {
		t.Errorf("results must be score-ordered: %f then %f", hits[0].Score, hits[1].Score)
	}
}

func TestSQLiteIndex_TiesKeepInsertionOrder(t *testing.T) {
	embedder := &fakeEmbedder{deflt: []float32{1, 0}}
	idx := testIndex(t, embedder)

	if _, err := idx.Store(context.Background(), []string{"first", "second", "third"}); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	hits, err := idx.Query(context.Background(), "anything", 3)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if hits[i].Text != w {
			t.Errorf("hit %d: got %q, want %q", i, hits[i].Text, w)
		}
	}
}

func TestSQLiteIndex_StoreNothing(t *testing.T) {
	idx := testIndex(t, &fakeEmbedder{deflt: []float32{1}})

	ids, err := idx.Store(context.Background(), nil)
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if ids != nil {
		t.Errorf("expected no ids, got %v", ids)
	}
}
