// Package matchapi は外部のセマンティック検索サービスへの HTTP クライアントを提供する
package matchapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jinford/safety-rag/internal/core/retrieval"
)

// DefaultTimeout は1リクエストあたりのタイムアウト
const DefaultTimeout = 20 * time.Second

// ErrEndpointNotSet はエンドポイントURLが空の場合のエラー
var ErrEndpointNotSet = errors.New("match endpoint URL not set")

type matchRequest struct {
	Query string `json:"query"`
}

type matchResponse struct {
	Matches []struct {
		Chunk  string `json:"chunk"`
		Source string `json:"source,omitempty"`
	} `json:"matches"`
}

// Client は retrieval.MatchOracle を HTTP で実装する
type Client struct {
	endpoint   string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient は http.Client を差し替える
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient は新しい Client を作成する
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ retrieval.MatchOracle = (*Client)(nil)

// Match はクエリを送信し、サービスが返した順にチャンクを返す
func (c *Client) Match(ctx context.Context, query string, credential string) ([]retrieval.Match, error) {
	if c.endpoint == "" {
		return nil, ErrEndpointNotSet
	}

	body, err := json.Marshal(matchRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode match request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build match request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("match request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("match service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode match response: %w", err)
	}

	matches := make([]retrieval.Match, 0, len(decoded.Matches))
	for _, m := range decoded.Matches {
		matches = append(matches, retrieval.Match{Chunk: m.Chunk, Source: m.Source})
	}
	return matches, nil
}
