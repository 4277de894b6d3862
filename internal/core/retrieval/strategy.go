package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/jinford/safety-rag/internal/core/text"
)

const (
	StrategySemantic = "semantic"
	StrategyKeyword  = "keyword"

	knowledgeSeparator = "\n\n"
)

// Strategy はナレッジベースを組み立てる検索戦略
type Strategy interface {
	Name() string
	Retrieve(ctx context.Context, query string, credential string) (Knowledge, error)
}

// SemanticStrategy は外部のセマンティック検索オラクルを使う戦略
type SemanticStrategy struct {
	oracle MatchOracle
}

// NewSemanticStrategy は新しい SemanticStrategy を作成する
func NewSemanticStrategy(oracle MatchOracle) *SemanticStrategy {
	return &SemanticStrategy{oracle: oracle}
}

func (s *SemanticStrategy) Name() string { return StrategySemantic }

// Retrieve はオラクルのマッチ結果をそのまま空行区切りで連結する
func (s *SemanticStrategy) Retrieve(ctx context.Context, query string, credential string) (Knowledge, error) {
	matches, err := s.oracle.Match(ctx, query, credential)
	if err != nil {
		return Knowledge{}, fmt.Errorf("semantic match failed: %w", err)
	}

	parts := make([]string, 0, len(matches))
	sources := make([]string, 0)
	for _, m := range matches {
		if strings.TrimSpace(m.Chunk) == "" {
			continue
		}
		parts = append(parts, m.Chunk)
		if m.Source != "" {
			sources = append(sources, m.Source)
		}
	}

	return Knowledge{
		Text:    strings.Join(parts, knowledgeSeparator),
		Sources: dedupe(sources),
	}, nil
}

// KeywordStrategy はローカルコーパス全体をキーワードスコアリングする戦略
type KeywordStrategy struct {
	corpus CorpusStore
	topN   int
}

// NewKeywordStrategy は新しい KeywordStrategy を作成する
func NewKeywordStrategy(corpus CorpusStore, topN int) *KeywordStrategy {
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &KeywordStrategy{corpus: corpus, topN: topN}
}

func (s *KeywordStrategy) Name() string { return StrategyKeyword }

// Retrieve は上位チャンクを「[ドキュメント名]」付きで空行区切りに連結する
func (s *KeywordStrategy) Retrieve(ctx context.Context, query string, credential string) (Knowledge, error) {
	docs, err := s.corpus.ListDocuments(ctx)
	if err != nil {
		return Knowledge{}, fmt.Errorf("failed to load corpus: %w", err)
	}

	ranked := ScoreChunks(text.ExtractQueryWords(query), docs, s.topN)

	parts := make([]string, 0, len(ranked))
	sources := make([]string, 0, len(ranked))
	for _, c := range ranked {
		parts = append(parts, fmt.Sprintf("[%s]\n%s", c.DocumentName, c.Text))
		sources = append(sources, c.DocumentName)
	}

	return Knowledge{
		Text:    strings.Join(parts, knowledgeSeparator),
		Sources: dedupe(sources),
	}, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
