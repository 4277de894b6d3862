package retrieval

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jinford/safety-rag/internal/core/corpus"
)

const (
	// DefaultTopN はキーワードスコアリングで返すチャンク数の既定値
	DefaultTopN = 10

	exactMatchWeight   = 3
	partialMatchWeight = 1
)

// ScoreChunks はクエリ語と各ドキュメントのチャンクの重なりからスコアを計算し、
// スコア降順で上位 limit 件を返す。同点の場合は出現順を保つ。
func ScoreChunks(queryWords []string, documents []*corpus.Document, limit int) []ScoredChunk {
	if limit <= 0 {
		limit = DefaultTopN
	}

	lowered := make([]string, 0, len(queryWords))
	for _, w := range queryWords {
		if w = strings.ToLower(w); w != "" {
			lowered = append(lowered, w)
		}
	}

	scored := make([]ScoredChunk, 0)
	if len(lowered) == 0 {
		return scored
	}

	for _, doc := range documents {
		if doc == nil {
			continue
		}
		seen := make(map[string]struct{}, len(doc.Chunks))

		for _, chunk := range doc.Chunks {
			trimmed := strings.TrimSpace(chunk)
			if trimmed == "" {
				continue
			}
			if _, dup := seen[trimmed]; dup {
				continue
			}
			seen[trimmed] = struct{}{}

			score := scoreChunk(strings.ToLower(chunk), lowered)
			if score <= 0 {
				continue
			}
			scored = append(scored, ScoredChunk{
				Text:         chunk,
				Score:        score,
				DocumentName: doc.Name,
			})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func scoreChunk(chunkLower string, words []string) int {
	score := 0
	for _, w := range words {
		total, exact := countOccurrences(chunkLower, w)
		score += exact*exactMatchWeight + (total-exact)*partialMatchWeight
	}
	return score
}

// countOccurrences は重ならない出現回数と、そのうち単語境界に一致する回数を返す
func countOccurrences(s, word string) (total, exact int) {
	offset := 0
	for {
		idx := strings.Index(s[offset:], word)
		if idx < 0 {
			return total, exact
		}
		start := offset + idx
		end := start + len(word)
		total++
		if isBoundaryBefore(s, start) && isBoundaryAfter(s, end) {
			exact++
		}
		offset = end
	}
}

func isBoundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func isBoundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
