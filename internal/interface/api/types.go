package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/jinford/safety-rag/internal/core/chat"
	"github.com/jinford/safety-rag/internal/core/corpus"
	"github.com/jinford/safety-rag/internal/core/llm"
)

type errorResponse struct {
	Error string `json:"error"`
}

// chatRequest は history（保存済み会話）か prior（直前の1往復）のどちらかで継続情報を渡す
type chatRequest struct {
	Message string                 `json:"message"`
	History []llm.Message          `json:"history,omitempty"`
	Prior   *chat.ConversationTurn `json:"prior,omitempty"`
}

type titleRequest struct {
	Message string `json:"message"`
}

type titleResponse struct {
	Title string `json:"title"`
}

type documentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
}

type uploadResponse struct {
	ID            uuid.UUID `json:"id"`
	Chunks        int       `json:"chunks"`
	EmbeddedCount int       `json:"embedded"`
}

type documentSummary struct {
	ID         uuid.UUID           `json:"id"`
	Name       string              `json:"name"`
	Type       corpus.DocumentType `json:"type"`
	Chunks     int                 `json:"chunks"`
	UploadedAt time.Time           `json:"uploadedAt"`
}

type credentialRequest struct {
	APIKey string `json:"apiKey"`
}
