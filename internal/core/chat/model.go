package chat

import (
	"github.com/samber/mo"

	"github.com/jinford/safety-rag/internal/core/llm"
)

// ConversationTurn は直前の1往復（ユーザー発話とアシスタント応答）
type ConversationTurn struct {
	UserText      string `json:"userText"`
	AssistantText string `json:"assistantText"`
}

// ConversationContext は呼び出し側が渡す会話の継続情報
type ConversationContext struct {
	Prior mo.Option[ConversationTurn]
}

// Reply は GenerateResponse の詳細な結果
type Reply struct {
	Text     string   `json:"reply"`
	Sources  []string `json:"sources,omitempty"`
	Strategy string   `json:"strategy,omitempty"`
}

// LastTurn は保存済み履歴から最新のユーザー→アシスタントの1往復を取り出す
func LastTurn(history []llm.Message) mo.Option[ConversationTurn] {
	for i := len(history) - 1; i > 0; i-- {
		if history[i].Role != llm.RoleAssistant {
			continue
		}
		if history[i-1].Role != llm.RoleUser {
			continue
		}
		return mo.Some(ConversationTurn{
			UserText:      history[i-1].Content,
			AssistantText: history[i].Content,
		})
	}
	return mo.None[ConversationTurn]()
}
