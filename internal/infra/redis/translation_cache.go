// Package redis はクエリ翻訳結果の Redis キャッシュを提供する
package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jinford/safety-rag/internal/core/retrieval"
)

const (
	// DefaultTTL は翻訳結果の保持期間
	DefaultTTL = 24 * time.Hour

	keyPrefix = "safety-rag:translation:"
)

// Config は Redis 接続設定
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient は接続確認済みの Redis クライアントを作成する
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Cmdable は TranslationCache が使う Redis コマンド
type Cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// TranslationCache は retrieval.Translator をキャッシュで包む。
// キャッシュの障害は翻訳自体を妨げない。
type TranslationCache struct {
	next   retrieval.Translator
	client Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

type CacheOption func(*TranslationCache)

// WithTTL は保持期間を設定する
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *TranslationCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger はロガーを設定する
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *TranslationCache) {
		c.logger = logger
	}
}

// NewTranslationCache は新しい TranslationCache を作成する
func NewTranslationCache(next retrieval.Translator, client Cmdable, opts ...CacheOption) *TranslationCache {
	c := &TranslationCache{
		next:   next,
		client: client,
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

var _ retrieval.Translator = (*TranslationCache)(nil)

func (c *TranslationCache) Translate(ctx context.Context, text string, credential string) (string, error) {
	key := cacheKey(text)

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil && cached != "":
		c.logger.Debug("translation cache hit", "key", key)
		return cached, nil
	case err != nil && !errors.Is(err, redis.Nil):
		c.logger.Warn("translation cache read failed", "error", err)
	}

	translated, err := c.next.Translate(ctx, text, credential)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(translated) != "" {
		if err := c.client.Set(ctx, key, translated, c.ttl).Err(); err != nil {
			c.logger.Warn("translation cache write failed", "error", err)
		}
	}

	return translated, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return keyPrefix + hex.EncodeToString(sum[:])
}
