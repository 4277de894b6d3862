package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Script はメッセージの文字体系を表す
type Script string

const (
	ScriptLatin    Script = "latin"
	ScriptCyrillic Script = "cyrillic"
)

// minQueryWordLen 以下の長さの単語はクエリ語として扱わない
const minQueryWordLen = 2

// stopWords は言語に依存しない短い接続語の一覧
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {}, "from": {},
	"are": {}, "was": {}, "what": {}, "how": {},
	"ili": {}, "kao": {}, "koji": {}, "koja": {}, "koje": {}, "sta": {}, "šta": {},
	"kako": {}, "gde": {}, "kada": {}, "zašto": {}, "zasto": {}, "ali": {}, "ima": {},
	"biti": {}, "jer": {}, "već": {}, "vec": {}, "još": {}, "jos": {}, "samo": {},
	"što": {}, "sto": {}, "ovo": {}, "taj": {}, "kod": {}, "pri": {}, "nad": {},
	"pod": {}, "bez": {},
}

// Normalize は小文字化・NFD分解・結合文字除去を行い [a-z\s] 以外を取り除く。
// フォローアップ判定専用であり、スコアリングには使わない。
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var sb strings.Builder
	sb.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || unicode.IsSpace(r) {
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

// ExtractQueryWords はスコアリング用のクエリ語を抽出する。
// 重複は除去しない（同じ語の繰り返しはスコアに繰り返し加算される）。
func ExtractQueryWords(s string) []string {
	lowered := strings.ToLower(s)
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, lowered)

	words := make([]string, 0)
	for _, w := range strings.Fields(cleaned) {
		if len([]rune(w)) <= minQueryWordLen {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

// DetectScript はキリル文字が1文字でも含まれていれば ScriptCyrillic を返す
func DetectScript(s string) Script {
	for _, r := range s {
		if unicode.Is(unicode.Cyrillic, r) {
			return ScriptCyrillic
		}
	}
	return ScriptLatin
}
