package corpus

// DefaultChunkSize はチャンク分割の既定サイズ（文字数）
const DefaultChunkSize = 1000

// SplitFixed はテキストを重なりなしの固定長チャンクに分割する。
// サイズは rune 単位で数える。
func SplitFixed(content string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	runes := []rune(content)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
