package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jinford/safety-rag/internal/core/llm"
)

// GenerationParams は回答生成時のパラメータ
type GenerationParams struct {
	Model            string
	Temperature      float64
	MaxTokens        int
	PresencePenalty  float64
	FrequencyPenalty float64
}

// DefaultGenerationParams は会話向けの既定パラメータを返す
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Temperature:      0.7,
		MaxTokens:        1000,
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.1,
	}
}

// AnswerGenerator は補完オラクルを呼び出して回答テキストを返す
type AnswerGenerator struct {
	client llm.Client
	params GenerationParams
	logger *slog.Logger
}

// NewAnswerGenerator は新しい AnswerGenerator を作成する
func NewAnswerGenerator(client llm.Client, params GenerationParams, logger *slog.Logger) *AnswerGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerGenerator{client: client, params: params, logger: logger}
}

// Answer は回答を生成する。失敗時も利用者向けの固定文言を返し、エラーは返さない。
func (g *AnswerGenerator) Answer(ctx context.Context, messages []llm.Message, credential string) string {
	resp, err := g.client.Complete(ctx, llm.CompletionRequest{
		Messages:         messages,
		Credential:       credential,
		Model:            g.params.Model,
		Temperature:      g.params.Temperature,
		MaxTokens:        g.params.MaxTokens,
		PresencePenalty:  g.params.PresencePenalty,
		FrequencyPenalty: g.params.FrequencyPenalty,
	})
	if err != nil {
		g.logger.Error("answer generation failed", "error", err)
		return failureMessage(err)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		g.logger.Warn("completion returned empty content", "model", resp.Model)
		return MsgNoResponse
	}

	g.logger.Info("answer generated",
		"model", resp.Model,
		"tokensUsed", resp.TokensUsed,
		"answerLength", len(content),
	)
	return content
}

func failureMessage(err error) string {
	if errors.Is(err, llm.ErrInvalidCredential) {
		return MsgInvalidCredential
	}
	if errors.Is(err, llm.ErrNoChoices) {
		return MsgNoResponse
	}
	return fmt.Sprintf(MsgErrorFormat, err.Error())
}
