package retrieval

// ScoredChunk はキーワードスコアリングで得られたチャンク。スコアは常に正。
type ScoredChunk struct {
	Text         string `json:"text"`
	Score        int    `json:"score"`
	DocumentName string `json:"documentName"`
}

// Match はセマンティック検索オラクルが返すチャンク
type Match struct {
	Chunk  string `json:"chunk"`
	Source string `json:"source,omitempty"`
}

// Knowledge は1つの検索戦略が組み立てたナレッジベース
type Knowledge struct {
	Text    string
	Sources []string
}

// Result は1クエリ分の検索結果
type Result struct {
	KnowledgeBase string   // プロンプトに埋め込むナレッジベース本文
	Sources       []string // 使用したドキュメント名（重複なし）
	Query         string   // 検索に使ったクエリ（翻訳済みの場合あり）
	Strategy      string   // ナレッジベースを組み立てた戦略名（空なら該当なし）
	FollowUp      bool     // 続きを求めるターンかどうか
	NoContent     bool     // ナレッジベースが空かつフォローアップでない
}
