package corpus

import (
	"context"

	"github.com/google/uuid"
)

// ChunkEmbedding はチャンクとその埋め込みベクトル
type ChunkEmbedding struct {
	Ordinal int
	Content string
	Vector  []float32
}

// Repository はコーパスの永続化インターフェース
type Repository interface {
	// SaveDocument はドキュメントを保存する
	SaveDocument(ctx context.Context, doc *Document) error

	// ListDocuments は全ドキュメントを新しい順に返す
	ListDocuments(ctx context.Context) ([]*Document, error)

	// SaveChunkEmbeddings はドキュメントのチャンク埋め込みを保存する
	SaveChunkEmbeddings(ctx context.Context, documentID uuid.UUID, embeddings []ChunkEmbedding) error
}

// Embedder はチャンクの埋め込み生成インターフェース
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
	MaxBatchSize() int
}
