package corpus

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType はアップロードされたドキュメントの種別
type DocumentType string

const (
	DocumentTypePDF DocumentType = "pdf"
	DocumentTypeTXT DocumentType = "txt"
)

// Document はコーパスに登録されたドキュメント。登録後は不変。
type Document struct {
	ID         uuid.UUID    `json:"id"`
	Name       string       `json:"name"`
	Content    string       `json:"content"`
	Type       DocumentType `json:"type"`
	Chunks     []string     `json:"chunks"`
	UploadedAt time.Time    `json:"uploadedAt"`
}

// UploadParams はドキュメント登録のパラメータ
type UploadParams struct {
	Name    string
	Content string
	Type    DocumentType
}

// UploadResult はドキュメント登録の結果
type UploadResult struct {
	DocumentID    uuid.UUID
	ChunkCount    int
	EmbeddedCount int
}
