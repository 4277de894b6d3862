package chat

import (
	"fmt"
	"strings"

	"github.com/samber/mo"

	"github.com/jinford/safety-rag/internal/core/llm"
	"github.com/jinford/safety-rag/internal/core/text"
)

// DefaultOrganization はペルソナに埋め込む既定の組織名
const DefaultOrganization = "našu kompaniju"

const (
	scriptInstructionCyrillic = "Korisnik piše ćirilicom: odgovor napiši isključivo na srpskom jeziku, ćiriličnim pismom (ћирилица)."
	scriptInstructionLatin    = "Korisnik piše latinicom: odgovor napiši isključivo na srpskom jeziku, latiničnim pismom."

	knowledgeBlockSeparator = "\n\n"
)

// PromptComposer は補完オラクルに渡すメッセージ列を組み立てる
type PromptComposer struct {
	organization string
	counter      TokenCounter
	maxKBTokens  int
}

type PromptComposerOption func(*PromptComposer)

// WithOrganization はペルソナの組織名を設定する
func WithOrganization(name string) PromptComposerOption {
	return func(c *PromptComposer) {
		c.organization = name
	}
}

// WithKnowledgeBaseBudget はナレッジベースのトークン上限を設定する（0 は無制限）
func WithKnowledgeBaseBudget(counter TokenCounter, maxTokens int) PromptComposerOption {
	return func(c *PromptComposer) {
		c.counter = counter
		c.maxKBTokens = maxTokens
	}
}

// NewPromptComposer は新しい PromptComposer を作成する
func NewPromptComposer(opts ...PromptComposerOption) *PromptComposer {
	c := &PromptComposer{organization: DefaultOrganization}
	for _, opt := range opts {
		opt(c)
	}
	if strings.TrimSpace(c.organization) == "" {
		c.organization = DefaultOrganization
	}
	return c
}

// Compose はシステム指示・直前の1往復・現在のメッセージの順でメッセージ列を返す。
// 現在のユーザーメッセージは常に最後に置く。
func (c *PromptComposer) Compose(message, knowledgeBase string, prior mo.Option[ConversationTurn]) []llm.Message {
	messages := make([]llm.Message, 0, 4)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: c.systemPrompt(message, knowledgeBase),
	})

	if turn, ok := prior.Get(); ok {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: turn.UserText},
			llm.Message{Role: llm.RoleAssistant, Content: turn.AssistantText},
		)
	}

	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})
	return messages
}

func (c *PromptComposer) systemPrompt(message, knowledgeBase string) string {
	kb := c.fitKnowledgeBase(knowledgeBase)
	if strings.TrimSpace(kb) == "" {
		kb = ContinuationPlaceholder
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Ti si asistent za bezbednost i zdravlje na radu za %s. ", c.organization))
	sb.WriteString("Odgovaraš na pitanja zaposlenih isključivo na osnovu priložene baze znanja.\n\n")

	sb.WriteString("Pravila:\n")
	sb.WriteString("- Odgovaraj samo na osnovu informacija iz baze znanja.\n")
	sb.WriteString("- Budi ljubazan i razgovoran.\n")
	sb.WriteString("- Ako informacija nije u bazi znanja, ljubazno to reci.\n")
	sb.WriteString("- Navedi konkretne reference (naziv dokumenta) kada je moguće.\n")
	sb.WriteString("- Budi sažet, ali temeljan.\n")
	sb.WriteString("- Uvek odgovaraj na srpskom jeziku, bez obzira na jezik pitanja.\n")
	sb.WriteString("- ")
	sb.WriteString(ScriptInstruction(text.DetectScript(message)))
	sb.WriteString("\n\n")

	sb.WriteString("Baza znanja:\n")
	sb.WriteString(kb)

	return sb.String()
}

// fitKnowledgeBase はトークン上限を超える場合に末尾のブロックから切り捨てる。
// 先頭ブロックは常に残す。
func (c *PromptComposer) fitKnowledgeBase(kb string) string {
	if c.counter == nil || c.maxKBTokens <= 0 || kb == "" {
		return kb
	}
	if c.counter.CountTokens(kb) <= c.maxKBTokens {
		return kb
	}

	blocks := strings.Split(kb, knowledgeBlockSeparator)
	kept := []string{blocks[0]}
	used := c.counter.CountTokens(blocks[0])
	for _, b := range blocks[1:] {
		n := c.counter.CountTokens(b)
		if used+n > c.maxKBTokens {
			break
		}
		kept = append(kept, b)
		used += n
	}
	return strings.Join(kept, knowledgeBlockSeparator)
}

// ScriptInstruction は文字体系に応じた回答指示を返す
func ScriptInstruction(script text.Script) string {
	if script == text.ScriptCyrillic {
		return scriptInstructionCyrillic
	}
	return scriptInstructionLatin
}
