package llm

import (
	"context"
	"errors"
)

// Role はメッセージの送信者
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message は補完オラクルに渡す1メッセージ
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest は補完リクエスト
type CompletionRequest struct {
	Messages         []Message
	Credential       string
	Model            string // 空の場合はクライアント既定のモデル
	Temperature      float64
	MaxTokens        int
	PresencePenalty  float64
	FrequencyPenalty float64
}

// CompletionResponse は補完レスポンス
type CompletionResponse struct {
	Content    string
	Model      string
	TokensUsed int
}

// Client は補完オラクルのインターフェース
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

var (
	// ErrInvalidCredential は認証情報が拒否された場合のエラー
	ErrInvalidCredential = errors.New("invalid API key")

	// ErrNoChoices は補完候補が返らなかった場合のエラー
	ErrNoChoices = errors.New("no completion choices returned")
)
