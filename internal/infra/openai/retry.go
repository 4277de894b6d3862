package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/jinford/safety-rag/internal/core/llm"
)

const (
	// MaxRetries はレート制限エラー時の最大リトライ回数
	MaxRetries = 3

	// BaseBackoff はExponential Backoffの基底時間
	BaseBackoff = 2 * time.Second

	// MaxBackoff はExponential Backoffの最大待機時間
	MaxBackoff = 32 * time.Second
)

// ErrMaxRetriesExceeded は最大リトライ回数を超過した場合のエラー
var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// RetryingOracle は llm.Client をレート制限とバックオフ付きリトライで包む。
// 再試行するのは 429 と 5xx のみ。
type RetryingOracle struct {
	next        llm.Client
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	retryable   func(error) bool
	logger      *slog.Logger
}

type RetryOption func(*RetryingOracle)

// WithRateLimit は毎秒のリクエスト数とバースト数を設定する（rps<=0 で無制限）
func WithRateLimit(rps float64, burst int) RetryOption {
	return func(r *RetryingOracle) {
		if rps <= 0 {
			r.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBackoff はリトライ回数と待機時間を設定する
func WithBackoff(maxRetries int, base, max time.Duration) RetryOption {
	return func(r *RetryingOracle) {
		r.maxRetries = maxRetries
		r.baseBackoff = base
		r.maxBackoff = max
	}
}

// WithRetryLogger はロガーを設定する
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(r *RetryingOracle) {
		r.logger = logger
	}
}

// NewRetryingOracle は新しい RetryingOracle を作成する
func NewRetryingOracle(next llm.Client, opts ...RetryOption) *RetryingOracle {
	r := &RetryingOracle{
		next:        next,
		maxRetries:  MaxRetries,
		baseBackoff: BaseBackoff,
		maxBackoff:  MaxBackoff,
		retryable:   isTransientError,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Complete は一時的なエラーの場合のみ指数バックオフで再試行する
func (r *RetryingOracle) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := r.backoff(attempt)
			r.logger.Warn("completion API call failed transiently, retrying",
				"attempt", attempt,
				"wait", wait,
			)
			select {
			case <-ctx.Done():
				return llm.CompletionResponse{}, ctx.Err()
			case <-time.After(wait):
			}
		}

		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return llm.CompletionResponse{}, fmt.Errorf("rate limiter wait failed: %w", err)
			}
		}

		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !r.retryable(err) {
			return llm.CompletionResponse{}, err
		}
	}

	if r.maxRetries == 0 {
		return llm.CompletionResponse{}, lastErr
	}
	return llm.CompletionResponse{}, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

func (r *RetryingOracle) backoff(attempt int) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt-1))) * r.baseBackoff
	if d > r.maxBackoff {
		d = r.maxBackoff
	}
	return d
}

var _ llm.Client = (*RetryingOracle)(nil)
