package chat

import (
	"context"

	"github.com/samber/mo"

	"github.com/jinford/safety-rag/internal/core/retrieval"
)

// CredentialStore は補完サービスの認証情報の保存先
type CredentialStore interface {
	// Get は設定済みの認証情報を返す。未設定なら None。
	Get(ctx context.Context) (mo.Option[string], error)

	// Save は認証情報を保存する
	Save(ctx context.Context, credential string) error
}

// Retriever はメッセージからナレッジベースを組み立てる
type Retriever interface {
	Retrieve(ctx context.Context, message string, credential string) *retrieval.Result
}

// TokenCounter はテキストのトークン数を数える
type TokenCounter interface {
	CountTokens(text string) int
}
