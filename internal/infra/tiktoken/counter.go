// Package tiktoken は tiktoken を利用したトークン数の計測を提供する
package tiktoken

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jinford/safety-rag/internal/core/chat"
)

// DefaultEncoding は gpt-4o 系以前のチャットモデルと互換のエンコーディング
const DefaultEncoding = "cl100k_base"

// Counter は chat.TokenCounter 実装
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounter は指定エンコーディングの Counter を作成する
func NewCounter(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding: %w", err)
	}
	return &Counter{encoding: enc}, nil
}

var _ chat.TokenCounter = (*Counter)(nil)

func (c *Counter) CountTokens(text string) int {
	if c.encoding == nil || text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}
