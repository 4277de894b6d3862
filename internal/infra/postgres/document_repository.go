package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/safety-rag/internal/core/corpus"
	"github.com/jinford/safety-rag/internal/core/retrieval"
)

const (
	insertDocumentSQL = `
INSERT INTO documents (id, name, content, type, chunks, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	listDocumentsSQL = `
SELECT id, name, content, type, chunks, uploaded_at
FROM documents
ORDER BY uploaded_at DESC, name ASC`

	upsertChunkEmbeddingSQL = `
INSERT INTO document_chunks (document_id, ordinal, content, embedding)
VALUES ($1, $2, $3, $4::vector)
ON CONFLICT (document_id, ordinal) DO UPDATE
SET content = EXCLUDED.content, embedding = EXCLUDED.embedding`
)

// DocumentRepository は corpus.Repository と retrieval.CorpusStore を実装する
type DocumentRepository struct {
	db DBTX
}

// NewDocumentRepository は新しい DocumentRepository を作成する
func NewDocumentRepository(db DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// コンパイル時の型チェック
var (
	_ corpus.Repository     = (*DocumentRepository)(nil)
	_ retrieval.CorpusStore = (*DocumentRepository)(nil)
)

func (r *DocumentRepository) SaveDocument(ctx context.Context, doc *corpus.Document) error {
	chunks := doc.Chunks
	if chunks == nil {
		chunks = []string{}
	}

	_, err := r.db.Exec(ctx, insertDocumentSQL,
		UUIDToPgtype(doc.ID),
		doc.Name,
		doc.Content,
		string(doc.Type),
		chunks,
		TimeToPgtype(doc.UploadedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListDocuments(ctx context.Context) ([]*corpus.Document, error) {
	rows, err := r.db.Query(ctx, listDocumentsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*corpus.Document, 0)
	for rows.Next() {
		var (
			id         pgtype.UUID
			name       string
			content    string
			docType    string
			chunks     []string
			uploadedAt pgtype.Timestamp
		)
		if err := rows.Scan(&id, &name, &content, &docType, &chunks, &uploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &corpus.Document{
			ID:         PgtypeToUUID(id),
			Name:       name,
			Content:    content,
			Type:       corpus.DocumentType(docType),
			Chunks:     chunks,
			UploadedAt: PgtypeToTime(uploadedAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentRepository) SaveChunkEmbeddings(ctx context.Context, documentID uuid.UUID, embeddings []corpus.ChunkEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range embeddings {
		batch.Queue(upsertChunkEmbeddingSQL,
			UUIDToPgtype(documentID),
			int32(e.Ordinal),
			e.Content,
			pgvector.NewVector(e.Vector),
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := range embeddings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to save chunk embedding %d: %w", embeddings[i].Ordinal, err)
		}
	}
	return nil
}
