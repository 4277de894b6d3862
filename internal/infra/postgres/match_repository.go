package postgres

import (
	"context"
	"fmt"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/safety-rag/internal/core/retrieval"
)

// DefaultMatchLimit はセマンティック検索で返すチャンク数の既定値
const DefaultMatchLimit = 5

const searchChunksSQL = `
SELECT c.content, d.name, 1 - (c.embedding <=> $1::vector) AS score
FROM document_chunks c
JOIN documents d ON d.id = c.document_id
ORDER BY c.embedding <=> $1::vector, d.name, c.ordinal
LIMIT $2`

// QueryEmbedder はクエリをベクトル化する
type QueryEmbedder interface {
	Embed(ctx context.Context, text string, apiKey string) ([]float32, error)
}

// MatchRepository は pgvector のコサイン距離で retrieval.MatchOracle を実装する
type MatchRepository struct {
	db       DBTX
	embedder QueryEmbedder
	limit    int
	minScore float64
}

type MatchOption func(*MatchRepository)

// WithMatchLimit は返すチャンク数を設定する
func WithMatchLimit(limit int) MatchOption {
	return func(r *MatchRepository) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// WithMinScore は類似度の下限を設定する（0 で無効）
func WithMinScore(score float64) MatchOption {
	return func(r *MatchRepository) {
		r.minScore = score
	}
}

// NewMatchRepository は新しい MatchRepository を作成する
func NewMatchRepository(db DBTX, embedder QueryEmbedder, opts ...MatchOption) *MatchRepository {
	r := &MatchRepository{db: db, embedder: embedder, limit: DefaultMatchLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ retrieval.MatchOracle = (*MatchRepository)(nil)

// Match はクエリを埋め込み、類似度の高い順にチャンクを返す
func (r *MatchRepository) Match(ctx context.Context, query string, credential string) ([]retrieval.Match, error) {
	vector, err := r.embedder.Embed(ctx, query, credential)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	rows, err := r.db.Query(ctx, searchChunksSQL, pgvector.NewVector(vector), int32(r.limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	matches := make([]retrieval.Match, 0, r.limit)
	for rows.Next() {
		var (
			content string
			name    string
			score   float64
		)
		if err := rows.Scan(&content, &name, &score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		if r.minScore > 0 && score < r.minScore {
			continue
		}
		matches = append(matches, retrieval.Match{Chunk: content, Source: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunks: %w", err)
	}

	return matches, nil
}
