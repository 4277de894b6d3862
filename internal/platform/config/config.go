package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// Database設定
	Database DatabaseConfig

	// OpenAI設定（回答生成・翻訳・Embeddings）
	OpenAI OpenAIConfig

	// 外部セマンティック検索設定
	Match MatchConfig

	// 検索パイプライン設定
	Retrieval RetrievalConfig

	// Redis設定（翻訳キャッシュ）
	Redis RedisConfig

	// HTTPサーバ設定
	HTTP HTTPConfig

	// アシスタントのペルソナに埋め込む組織名
	AssistantOrganization string

	// ログ設定
	Log LogConfig
}

// DatabaseConfig はデータベース接続設定
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OpenAIConfig はOpenAI API設定
type OpenAIConfig struct {
	APIKey             string // DBに保存されたキーがない場合のフォールバック
	BaseURL            string
	ChatModel          string
	EmbeddingModel     string
	EmbeddingDimension int
	Temperature        float64
	MaxTokens          int
	PresencePenalty    float64
	FrequencyPenalty   float64
	MaxRetries         int
	RequestsPerSecond  float64
}

// MatchConfig はセマンティック検索の設定
type MatchConfig struct {
	Enabled  bool
	Backend  string // "pgvector" or "http"
	URL      string
	Limit    int
	MinScore float64
}

// RetrievalConfig は検索パイプラインの設定
type RetrievalConfig struct {
	TopN                   int
	FollowUpTriggers       []string
	TranslateQuery         bool
	QueryLanguage          string
	OracleTimeout          time.Duration
	KnowledgeBaseMaxTokens int
}

// RedisConfig はRedis接続設定（Addr が空なら無効）
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// HTTPConfig はHTTPサーバ設定
type HTTPConfig struct {
	Port int
}

// LogConfig はログ出力設定
type LogConfig struct {
	Level  string
	Format string
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "safety"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "safety"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfig{
			APIKey:             getEnv("OPENAI_API_KEY", ""),
			BaseURL:            getEnv("OPENAI_BASE_URL", ""),
			ChatModel:          getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			EmbeddingModel:     getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimension: getEnvAsInt("OPENAI_EMBEDDING_DIMENSION", 1536),
			Temperature:        getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
			MaxTokens:          getEnvAsInt("OPENAI_MAX_TOKENS", 1000),
			PresencePenalty:    getEnvAsFloat("OPENAI_PRESENCE_PENALTY", 0.1),
			FrequencyPenalty:   getEnvAsFloat("OPENAI_FREQUENCY_PENALTY", 0.1),
			MaxRetries:         getEnvAsInt("OPENAI_MAX_RETRIES", 0),
			RequestsPerSecond:  getEnvAsFloat("OPENAI_REQUESTS_PER_SECOND", 0),
		},
		Match: MatchConfig{
			Enabled:  getEnvAsBool("MATCH_ENABLED", true),
			Backend:  getEnv("MATCH_BACKEND", "pgvector"),
			URL:      getEnv("MATCH_URL", ""),
			Limit:    getEnvAsInt("MATCH_LIMIT", 5),
			MinScore: getEnvAsFloat("MATCH_MIN_SCORE", 0),
		},
		Retrieval: RetrievalConfig{
			TopN:                   getEnvAsInt("RETRIEVAL_TOP_N", 10),
			FollowUpTriggers:       getEnvAsList("FOLLOW_UP_TRIGGERS", nil),
			TranslateQuery:         getEnvAsBool("TRANSLATE_QUERY", true),
			QueryLanguage:          getEnv("QUERY_LANGUAGE", "Serbian (Latin script)"),
			OracleTimeout:          getEnvAsDuration("ORACLE_TIMEOUT", 20*time.Second),
			KnowledgeBaseMaxTokens: getEnvAsInt("KNOWLEDGE_BASE_MAX_TOKENS", 0),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("REDIS_TRANSLATION_TTL", 24*time.Hour),
		},
		HTTP: HTTPConfig{
			Port: getEnvAsInt("HTTP_PORT", 8080),
		},
		AssistantOrganization: getEnv("ASSISTANT_ORGANIZATION", ""),
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Match.Enabled {
		switch c.Match.Backend {
		case "pgvector":
		case "http":
			if c.Match.URL == "" {
				return fmt.Errorf("MATCH_URL is required when MATCH_BACKEND=http")
			}
		default:
			return fmt.Errorf("unknown MATCH_BACKEND: %s", c.Match.Backend)
		}
	}
	if c.Retrieval.OracleTimeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must be positive")
	}
	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat は環境変数を浮動小数点数として取得します
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数を time.Duration として取得します（例: 20s）
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList はカンマ区切りの環境変数をリストとして取得します
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
