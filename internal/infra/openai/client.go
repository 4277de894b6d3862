package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/jinford/safety-rag/internal/core/llm"
)

const (
	// DefaultModel はデフォルトで使用するOpenAIモデル
	DefaultModel = "gpt-4o-mini"

	// DefaultTimeout はAPI呼び出しのデフォルトタイムアウト
	DefaultTimeout = 20 * time.Second
)

// ErrAPIKeyNotSet はAPIキーが渡されなかった場合のエラー
var ErrAPIKeyNotSet = errors.New("OpenAI API key not set")

// Client は OpenAI Chat Completions API を使用した llm.Client 実装。
// 認証情報はリクエストごとに受け取るため、保存済みキーの差し替えが即座に反映される。
type Client struct {
	model   string
	timeout time.Duration
	baseURL string
}

type ClientOption func(*Client)

// WithModel は既定モデルを設定する
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout はAPIコールのタイムアウトを設定する
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithBaseURL は接続先を差し替える（互換APIやテスト用）
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// NewClient は新しい Client を作成する
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		model:   DefaultModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelName はモデル名を返す
func (c *Client) ModelName() string {
	return c.model
}

// Complete は OpenAI API を使用してチャット補完を生成する
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	if strings.TrimSpace(req.Credential) == "" {
		return llm.CompletionResponse{}, ErrAPIKeyNotSet
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(model),
		Messages:    toMessageParams(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.PresencePenalty != 0 {
		params.PresencePenalty = openai.Float(req.PresencePenalty)
	}
	if req.FrequencyPenalty != 0 {
		params.FrequencyPenalty = openai.Float(req.FrequencyPenalty)
	}

	client := c.sdk(req.Credential)
	completion, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		if isStatus(err, http.StatusUnauthorized) {
			return llm.CompletionResponse{}, fmt.Errorf("OpenAI API call failed: %w: %v", llm.ErrInvalidCredential, err)
		}
		return llm.CompletionResponse{}, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return llm.CompletionResponse{}, llm.ErrNoChoices
	}

	return llm.CompletionResponse{
		Content:    completion.Choices[0].Message.Content,
		TokensUsed: int(completion.Usage.TotalTokens),
		Model:      string(completion.Model),
	}, nil
}

func (c *Client) sdk(apiKey string) openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		// リトライは RetryingOracle 側で行う
		option.WithMaxRetries(0),
	}
	if c.baseURL != "" {
		opts = append(opts, option.WithBaseURL(c.baseURL))
	}
	return openai.NewClient(opts...)
}

func toMessageParams(messages []llm.Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case llm.RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			params = append(params, openai.AssistantMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}
	return params
}

func isStatus(err error, status int) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}

func isTransientError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// インターフェース実装の確認
var _ llm.Client = (*Client)(nil)
