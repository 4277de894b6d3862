package text

import "strings"

// DefaultFollowUpTriggers は「続けて」を意味するセルビア語のトリガーフレーズ
var DefaultFollowUpTriggers = []string{"jos", "nastavi", "dalje", "daj jos", "nastavi dalje"}

// FollowUpDetector は前回の回答の続きを求めるターンかどうかを判定する
type FollowUpDetector struct {
	triggers []string
}

// NewFollowUpDetector はトリガー一覧から FollowUpDetector を作成する。
// 空の場合は DefaultFollowUpTriggers を使う。
func NewFollowUpDetector(triggers []string) *FollowUpDetector {
	normalized := make([]string, 0, len(triggers))
	for _, t := range triggers {
		if n := Normalize(t); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		normalized = append(normalized, DefaultFollowUpTriggers...)
	}
	return &FollowUpDetector{triggers: normalized}
}

// IsFollowUp は正規化したメッセージがいずれかのトリガーを部分文字列として含むか判定する
func (d *FollowUpDetector) IsFollowUp(message string) bool {
	normalized := Normalize(message)
	if normalized == "" {
		return false
	}
	for _, t := range d.triggers {
		if strings.Contains(normalized, t) {
			return true
		}
	}
	return false
}

// Triggers は正規化済みのトリガー一覧を返す
func (d *FollowUpDetector) Triggers() []string {
	out := make([]string, len(d.triggers))
	copy(out, d.triggers)
	return out
}
