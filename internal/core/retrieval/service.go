package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jinford/safety-rag/internal/core/text"
)

// DefaultCallTimeout は外部呼び出し1回あたりのタイムアウト
const DefaultCallTimeout = 20 * time.Second

// RetrievalService はクエリ翻訳・セマンティック検索・キーワード検索のフォールバックを統括する
type RetrievalService struct {
	strategies  []Strategy
	translator  Translator
	followUp    *text.FollowUpDetector
	callTimeout time.Duration
	logger      *slog.Logger
}

type RetrievalServiceOption func(*RetrievalService)

// WithRetrievalLogger は RetrievalService にロガーを設定する
func WithRetrievalLogger(logger *slog.Logger) RetrievalServiceOption {
	return func(s *RetrievalService) {
		s.logger = logger
	}
}

// WithTranslator はクエリ翻訳を有効にする
func WithTranslator(translator Translator) RetrievalServiceOption {
	return func(s *RetrievalService) {
		s.translator = translator
	}
}

// WithFollowUpDetector はフォローアップ判定を差し替える
func WithFollowUpDetector(detector *text.FollowUpDetector) RetrievalServiceOption {
	return func(s *RetrievalService) {
		s.followUp = detector
	}
}

// WithCallTimeout は外部呼び出しのタイムアウトを設定する
func WithCallTimeout(timeout time.Duration) RetrievalServiceOption {
	return func(s *RetrievalService) {
		s.callTimeout = timeout
	}
}

// NewRetrievalService は戦略を優先順に受け取り RetrievalService を作成する。
// nil の戦略は無視されるため、どちらの戦略も個別に無効化できる。
func NewRetrievalService(strategies []Strategy, opts ...RetrievalServiceOption) *RetrievalService {
	active := make([]Strategy, 0, len(strategies))
	for _, st := range strategies {
		if st != nil {
			active = append(active, st)
		}
	}

	svc := &RetrievalService{
		strategies:  active,
		callTimeout: DefaultCallTimeout,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.followUp == nil {
		svc.followUp = text.NewFollowUpDetector(nil)
	}
	if svc.callTimeout <= 0 {
		svc.callTimeout = DefaultCallTimeout
	}

	return svc
}

// Retrieve はメッセージに対するナレッジベースを組み立てる。
// 外部呼び出しの失敗はすべてログに残して空の結果として扱い、エラーは返さない。
func (s *RetrievalService) Retrieve(ctx context.Context, message string, credential string) *Result {
	query := s.translate(ctx, message, credential)

	result := &Result{Query: query}

	for _, st := range s.strategies {
		knowledge, err := s.runStrategy(ctx, st, query, credential)
		if err != nil {
			s.logger.Warn("retrieval strategy failed, falling back",
				"strategy", st.Name(),
				"error", err,
			)
			continue
		}
		if strings.TrimSpace(knowledge.Text) == "" {
			s.logger.Info("retrieval strategy returned no content",
				"strategy", st.Name(),
			)
			continue
		}

		result.KnowledgeBase = knowledge.Text
		result.Sources = knowledge.Sources
		result.Strategy = st.Name()
		break
	}

	result.FollowUp = s.followUp.IsFollowUp(message)
	result.NoContent = strings.TrimSpace(result.KnowledgeBase) == "" && !result.FollowUp

	s.logger.Info("retrieval completed",
		"strategy", result.Strategy,
		"knowledgeBaseLength", len(result.KnowledgeBase),
		"sources", len(result.Sources),
		"followUp", result.FollowUp,
		"noContent", result.NoContent,
	)

	return result
}

func (s *RetrievalService) translate(ctx context.Context, message, credential string) string {
	if s.translator == nil {
		return message
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	translated, err := s.translator.Translate(callCtx, message, credential)
	if err != nil {
		s.logger.Warn("query translation failed, using original message", "error", err)
		return message
	}
	if strings.TrimSpace(translated) == "" {
		return message
	}
	return strings.TrimSpace(translated)
}

func (s *RetrievalService) runStrategy(ctx context.Context, st Strategy, query, credential string) (Knowledge, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return st.Retrieve(callCtx, query, credential)
}
