package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"buddybot/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteIndex implements domain.RetrievalIndex on SQLite: chunk text plus its
// embedding vector per row, cosine-similarity scan on query. Fine for a
// single channel's history; it is not trying to be a vector database.
type SQLiteIndex struct {
	db       *sql.DB
	embedder domain.Embedder
	logger   *slog.Logger
}

type SQLiteIndexConfig struct {
	DBPath   string
	Embedder domain.Embedder
	Logger   *slog.Logger
}

func NewSQLiteIndex(cfg SQLiteIndexConfig) (*SQLiteIndex, error) {
	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	idx := &SQLiteIndex{db: db, embedder: cfg.Embedder, logger: cfg.Logger}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("index migration failed: %w", err)
	}
	return idx, nil
}

func (x *SQLiteIndex) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		content    TEXT NOT NULL,
		embedding  TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := x.db.Exec(schema)
	return err
}

// Store embeds and persists chunks, returning their row ids in input order.
func (x *SQLiteIndex) Store(ctx context.Context, chunks []string) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors, err := x.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin store: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		blob, err := json.Marshal(vectors[i])
		if err != nil {
			return nil, fmt.Errorf("encode embedding: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (content, embedding) VALUES (?, ?)`, chunk, string(blob))
		if err != nil {
			return nil, fmt.Errorf("insert chunk %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("chunk %d id: %w", i, err)
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit store: %w", err)
	}

	x.logger.Info("chunks indexed", "count", len(chunks))
	return ids, nil
}

// Query embeds text and returns the k most similar chunks, best first. Ties
// keep insertion order because the scan walks rows by ascending id and the
// sort is stable.
func (x *SQLiteIndex) Query(ctx context.Context, text string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = 10
	}

	vectors, err := x.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	query := vectors[0]

	rows, err := x.db.QueryContext(ctx, `SELECT id, content, embedding FROM chunks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}
	defer rows.Close()

	var scored []domain.ScoredChunk
	for rows.Next() {
		var (
			id      int64
			content string
			blob    string
		)
		if err := rows.Scan(&id, &content, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		var embedding []float32
		if err := json.Unmarshal([]byte(blob), &embedding); err != nil {
			return nil, fmt.Errorf("decode embedding for chunk %d: %w", id, err)
		}
		scored = append(scored, domain.ScoredChunk{
			Text:  content,
			Meta:  map[string]string{"chunk_id": strconv.FormatInt(id, 10)},
			Score: cosineSimilarity(query, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (x *SQLiteIndex) Close() error {
	return x.db.Close()
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
