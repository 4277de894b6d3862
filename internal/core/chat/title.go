package chat

import "strings"

const titleWordLimit = 5

// GenerateChatTitle は最初のメッセージの先頭5語からチャットタイトルを作る
func GenerateChatTitle(firstMessage string) string {
	words := strings.Fields(firstMessage)
	if len(words) == 0 {
		return DefaultChatTitle
	}

	if len(words) <= titleWordLimit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWordLimit], " ") + "..."
}
