package container

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jinford/safety-rag/internal/core/chat"
	"github.com/jinford/safety-rag/internal/core/corpus"
	"github.com/jinford/safety-rag/internal/core/llm"
	"github.com/jinford/safety-rag/internal/core/retrieval"
	"github.com/jinford/safety-rag/internal/core/text"
	"github.com/jinford/safety-rag/internal/infra/matchapi"
	"github.com/jinford/safety-rag/internal/infra/openai"
	"github.com/jinford/safety-rag/internal/infra/postgres"
	"github.com/jinford/safety-rag/internal/infra/redis"
	"github.com/jinford/safety-rag/internal/infra/tiktoken"
	"github.com/jinford/safety-rag/internal/platform/config"
	"github.com/jinford/safety-rag/internal/platform/database"
)

// ServiceContainer はアプリケーションの依存関係を保持する
type ServiceContainer struct {
	ChatService      *chat.ChatService
	CorpusService    *corpus.CorpusService
	RetrievalService *retrieval.RetrievalService

	logger   *slog.Logger
	database *database.Database
	redis    *goredis.Client
}

type containerOptions struct {
	logger       *slog.Logger
	llmClient    llm.Client
	matchOracle  retrieval.MatchOracle
	translator   retrieval.Translator
	tokenCounter chat.TokenCounter
	cache        redis.Cmdable
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerLLMClient は補完クライアントを差し替える
func WithContainerLLMClient(client llm.Client) ContainerOption {
	return func(opts *containerOptions) {
		opts.llmClient = client
	}
}

// WithContainerMatchOracle はセマンティック検索を差し替える
func WithContainerMatchOracle(oracle retrieval.MatchOracle) ContainerOption {
	return func(opts *containerOptions) {
		opts.matchOracle = oracle
	}
}

// WithContainerTranslator はクエリ翻訳を差し替える
func WithContainerTranslator(translator retrieval.Translator) ContainerOption {
	return func(opts *containerOptions) {
		opts.translator = translator
	}
}

// WithContainerTokenCounter は TokenCounter を差し替える
func WithContainerTokenCounter(counter chat.TokenCounter) ContainerOption {
	return func(opts *containerOptions) {
		opts.tokenCounter = counter
	}
}

// WithContainerTranslationCache は翻訳キャッシュの保存先を設定する
func WithContainerTranslationCache(cache redis.Cmdable) ContainerOption {
	return func(opts *containerOptions) {
		opts.cache = cache
	}
}

// NewContainer は設定からコンテナを生成する。
func NewContainer(ctx context.Context, logger *slog.Logger, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	db, err := database.New(ctx, database.ConnectionParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
	}

	opts = append([]ContainerOption{WithContainerLogger(logger)}, opts...)

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = redis.NewClient(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// キャッシュなしでも動作する
			logger.Warn("Redis に接続できないため翻訳キャッシュを無効化します", "addr", cfg.Redis.Addr, "error", err)
		} else {
			opts = append(opts, WithContainerTranslationCache(redisClient))
		}
	}

	c, err := NewContainerWithDB(cfg, db, opts...)
	if err != nil {
		db.Close()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, err
	}
	c.redis = redisClient
	return c, nil
}

// NewContainerWithDB は既存の Database を受け取りコンテナを生成する。
func NewContainerWithDB(cfg *config.Config, db *database.Database, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	logger := options.logger

	// Repository (PostgreSQL)
	documentRepo := postgres.NewDocumentRepository(db.Pool)
	credentials := chat.NewFallbackCredentialStore(
		postgres.NewCredentialStore(db.Pool),
		chat.NewStaticCredentialStore(cfg.OpenAI.APIKey),
	)

	// LLMClient (OpenAI)
	llmClient := options.llmClient
	if llmClient == nil {
		llmClient = openai.NewRetryingOracle(
			openai.NewClient(
				openai.WithModel(cfg.OpenAI.ChatModel),
				openai.WithTimeout(cfg.Retrieval.OracleTimeout),
				openai.WithBaseURL(cfg.OpenAI.BaseURL),
			),
			openai.WithBackoff(cfg.OpenAI.MaxRetries, openai.BaseBackoff, openai.MaxBackoff),
			openai.WithRateLimit(cfg.OpenAI.RequestsPerSecond, 1),
			openai.WithRetryLogger(logger),
		)
	}

	// Embedder (OpenAI)
	embedder := openai.NewEmbedder(
		credentials,
		openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
		openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
		openai.WithEmbeddingBaseURL(cfg.OpenAI.BaseURL),
	)

	// セマンティック検索
	matchOracle := options.matchOracle
	if matchOracle == nil && cfg.Match.Enabled {
		switch cfg.Match.Backend {
		case "http":
			matchOracle = matchapi.NewClient(cfg.Match.URL)
		default:
			matchOracle = postgres.NewMatchRepository(db.Pool, embedder,
				postgres.WithMatchLimit(cfg.Match.Limit),
				postgres.WithMinScore(cfg.Match.MinScore),
			)
		}
	}

	strategies := []retrieval.Strategy{}
	if matchOracle != nil {
		strategies = append(strategies, retrieval.NewSemanticStrategy(matchOracle))
	}
	strategies = append(strategies, retrieval.NewKeywordStrategy(documentRepo, cfg.Retrieval.TopN))

	retrievalOpts := []retrieval.RetrievalServiceOption{
		retrieval.WithRetrievalLogger(logger),
		retrieval.WithCallTimeout(cfg.Retrieval.OracleTimeout),
		retrieval.WithFollowUpDetector(text.NewFollowUpDetector(cfg.Retrieval.FollowUpTriggers)),
	}
	if cfg.Retrieval.TranslateQuery {
		translator := options.translator
		if translator == nil {
			translator = retrieval.NewQueryTranslator(llmClient, cfg.OpenAI.ChatModel, cfg.Retrieval.QueryLanguage)
		}
		if options.cache != nil {
			translator = redis.NewTranslationCache(translator, options.cache,
				redis.WithTTL(cfg.Redis.TTL),
				redis.WithCacheLogger(logger),
			)
		}
		retrievalOpts = append(retrievalOpts, retrieval.WithTranslator(translator))
	}
	retrievalService := retrieval.NewRetrievalService(strategies, retrievalOpts...)

	// PromptComposer
	composerOpts := []chat.PromptComposerOption{chat.WithOrganization(cfg.AssistantOrganization)}
	if cfg.Retrieval.KnowledgeBaseMaxTokens > 0 {
		counter := options.tokenCounter
		if counter == nil {
			tc, err := tiktoken.NewCounter(tiktoken.DefaultEncoding)
			if err != nil {
				return nil, fmt.Errorf("TokenCounter 初期化に失敗しました: %w", err)
			}
			counter = tc
		}
		composerOpts = append(composerOpts, chat.WithKnowledgeBaseBudget(counter, cfg.Retrieval.KnowledgeBaseMaxTokens))
	}

	generator := chat.NewAnswerGenerator(llmClient, chat.GenerationParams{
		Model:            cfg.OpenAI.ChatModel,
		Temperature:      cfg.OpenAI.Temperature,
		MaxTokens:        cfg.OpenAI.MaxTokens,
		PresencePenalty:  cfg.OpenAI.PresencePenalty,
		FrequencyPenalty: cfg.OpenAI.FrequencyPenalty,
	}, logger)

	chatService := chat.NewChatService(
		credentials,
		retrievalService,
		generator,
		chat.WithChatLogger(logger),
		chat.WithPromptComposer(chat.NewPromptComposer(composerOpts...)),
	)

	corpusOpts := []corpus.CorpusServiceOption{corpus.WithCorpusLogger(logger)}
	if cfg.Match.Enabled && cfg.Match.Backend != "http" {
		corpusOpts = append(corpusOpts, corpus.WithEmbedder(embedder))
	}
	corpusService := corpus.NewCorpusService(documentRepo, corpusOpts...)

	logger.Info("サービスコンテナを初期化しました",
		"strategies", len(strategies),
		"translateQuery", cfg.Retrieval.TranslateQuery,
		"translationCache", options.cache != nil,
		"kbTokenBudget", cfg.Retrieval.KnowledgeBaseMaxTokens,
	)

	return &ServiceContainer{
		ChatService:      chatService,
		CorpusService:    corpusService,
		RetrievalService: retrievalService,
		logger:           logger,
		database:         db,
	}, nil
}

// Close は内部リソースを解放する。
func (c *ServiceContainer) Close() {
	if c == nil {
		return
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.database != nil {
		c.database.Close()
	}
}

// Logger はロガーを返す。
func (c *ServiceContainer) Logger() *slog.Logger {
	if c == nil || c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Database はデータベースを返す。
func (c *ServiceContainer) Database() *database.Database {
	if c == nil {
		return nil
	}
	return c.database
}
