package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ChatService は資格情報確認・検索・プロンプト構築・回答生成を順に実行する
type ChatService struct {
	credentials CredentialStore
	retriever   Retriever
	composer    *PromptComposer
	generator   *AnswerGenerator
	logger      *slog.Logger
}

type ChatServiceOption func(*ChatService)

// WithChatLogger は ChatService にロガーを設定する
func WithChatLogger(logger *slog.Logger) ChatServiceOption {
	return func(s *ChatService) {
		s.logger = logger
	}
}

// WithPromptComposer は PromptComposer を差し替える
func WithPromptComposer(composer *PromptComposer) ChatServiceOption {
	return func(s *ChatService) {
		s.composer = composer
	}
}

// NewChatService は新しい ChatService を作成する
func NewChatService(
	credentials CredentialStore,
	retriever Retriever,
	generator *AnswerGenerator,
	opts ...ChatServiceOption,
) *ChatService {
	svc := &ChatService{
		credentials: credentials,
		retriever:   retriever,
		generator:   generator,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.composer == nil {
		svc.composer = NewPromptComposer()
	}

	return svc
}

// GenerateResponse はメッセージへの回答テキストを返す。常に表示可能な文字列を返す。
func (s *ChatService) GenerateResponse(ctx context.Context, message string, cc ConversationContext) string {
	return s.Respond(ctx, message, cc).Text
}

// Respond は GenerateResponse と同じ処理を行い、参照ソースなどの詳細も返す
func (s *ChatService) Respond(ctx context.Context, message string, cc ConversationContext) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chat pipeline panicked", "panic", fmt.Sprint(r))
			reply = Reply{Text: MsgUnexpected}
		}
	}()

	// 1. 認証情報の確認（ネットワーク呼び出しより前）
	credOpt, err := s.credentials.Get(ctx)
	if err != nil {
		s.logger.Error("failed to load credential", "error", err)
		return Reply{Text: fmt.Sprintf(MsgErrorFormat, err.Error())}
	}
	credential, ok := credOpt.Get()
	if !ok || strings.TrimSpace(credential) == "" {
		s.logger.Warn("completion credential is not configured")
		return Reply{Text: MsgMissingCredential}
	}

	// 2. 翻訳と検索
	result := s.retriever.Retrieve(ctx, message, credential)

	// 3. 空のナレッジベース（フォローアップ以外）は回答生成を行わない
	if result.NoContent {
		return Reply{Text: MsgNoDocuments}
	}

	// 4. プロンプト構築
	messages := s.composer.Compose(message, result.KnowledgeBase, cc.Prior)

	// 5. 回答生成
	s.logger.Info("generating answer with LLM",
		"messages", len(messages),
		"followUp", result.FollowUp,
		"strategy", result.Strategy,
	)
	answer := s.generator.Answer(ctx, messages, credential)

	return Reply{
		Text:     answer,
		Sources:  result.Sources,
		Strategy: result.Strategy,
	}
}

// SaveCredential は補完サービスの認証情報を保存する
func (s *ChatService) SaveCredential(ctx context.Context, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return fmt.Errorf("credential is required")
	}
	if err := s.credentials.Save(ctx, credential); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}
