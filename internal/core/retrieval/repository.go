package retrieval

import (
	"context"

	"github.com/jinford/safety-rag/internal/core/corpus"
)

// CorpusStore はローカルコーパスの読み取りインターフェース
type CorpusStore interface {
	ListDocuments(ctx context.Context) ([]*corpus.Document, error)
}

// MatchOracle は外部のセマンティック検索サービス
type MatchOracle interface {
	// Match はクエリに類似するチャンクを関連度順に返す
	Match(ctx context.Context, query string, credential string) ([]Match, error)
}

// Translator はクエリを検索用の言語に書き換える
type Translator interface {
	Translate(ctx context.Context, text string, credential string) (string, error)
}
