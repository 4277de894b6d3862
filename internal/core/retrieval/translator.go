package retrieval

import (
	"context"
	"fmt"

	"github.com/jinford/safety-rag/internal/core/llm"
)

// DefaultQueryLanguage は検索クエリの正規化先の言語
const DefaultQueryLanguage = "Serbian (Latin script)"

const translateInstruction = "Translate the user's question into %s for document search. " +
	"Preserve the core meaning of the question. Reply with the translated question only."

// QueryTranslator は補完オラクルを使ってクエリを検索用言語に翻訳する
type QueryTranslator struct {
	client   llm.Client
	model    string
	language string
}

// NewQueryTranslator は新しい QueryTranslator を作成する
func NewQueryTranslator(client llm.Client, model, language string) *QueryTranslator {
	if language == "" {
		language = DefaultQueryLanguage
	}
	return &QueryTranslator{client: client, model: model, language: language}
}

// Translate は1回の補完呼び出しでクエリを翻訳する
func (t *QueryTranslator) Translate(ctx context.Context, text string, credential string) (string, error) {
	resp, err := t.client.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf(translateInstruction, t.language)},
			{Role: llm.RoleUser, Content: text},
		},
		Credential:  credential,
		Model:       t.model,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	return resp.Content, nil
}
