package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	// ErrUnsupportedType はテキスト以外の形式が指定された場合のエラー
	ErrUnsupportedType = errors.New("unsupported document type")

	// ErrEmptyContent は本文が空の場合のエラー
	ErrEmptyContent = errors.New("document content is empty")
)

// CorpusService はドキュメント登録と一覧のビジネスロジックを提供する
type CorpusService struct {
	repo      Repository
	embedder  Embedder
	chunkSize int
	logger    *slog.Logger
	now       func() time.Time
}

type CorpusServiceOption func(*CorpusService)

// WithCorpusLogger は CorpusService にロガーを設定する
func WithCorpusLogger(logger *slog.Logger) CorpusServiceOption {
	return func(s *CorpusService) {
		s.logger = logger
	}
}

// WithEmbedder は登録時にチャンク埋め込みを生成する Embedder を設定する
func WithEmbedder(embedder Embedder) CorpusServiceOption {
	return func(s *CorpusService) {
		s.embedder = embedder
	}
}

// WithChunkSize はチャンクサイズを上書きする
func WithChunkSize(size int) CorpusServiceOption {
	return func(s *CorpusService) {
		s.chunkSize = size
	}
}

// NewCorpusService は新しい CorpusService を作成する
func NewCorpusService(repo Repository, opts ...CorpusServiceOption) *CorpusService {
	svc := &CorpusService{
		repo:      repo,
		chunkSize: DefaultChunkSize,
		logger:    slog.Default(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(svc)
	}

	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	if svc.chunkSize <= 0 {
		svc.chunkSize = DefaultChunkSize
	}

	return svc
}

// Upload は抽出済みテキストをチャンク分割して保存する
func (s *CorpusService) Upload(ctx context.Context, params UploadParams) (*UploadResult, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, fmt.Errorf("document name is required")
	}

	docType := params.Type
	if docType == "" {
		docType = DocumentTypeTXT
	}
	if docType != DocumentTypeTXT && docType != DocumentTypePDF {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, params.Type)
	}
	if !utf8.ValidString(params.Content) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8 text", ErrUnsupportedType)
	}
	if strings.TrimSpace(params.Content) == "" {
		return nil, ErrEmptyContent
	}

	doc := &Document{
		ID:         uuid.New(),
		Name:       name,
		Content:    params.Content,
		Type:       docType,
		Chunks:     SplitFixed(params.Content, s.chunkSize),
		UploadedAt: s.now().UTC(),
	}

	if err := s.repo.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Info("document saved",
		"documentID", doc.ID.String(),
		"name", doc.Name,
		"chunks", len(doc.Chunks),
	)

	result := &UploadResult{
		DocumentID: doc.ID,
		ChunkCount: len(doc.Chunks),
	}

	if s.embedder == nil {
		return result, nil
	}

	// 埋め込みに失敗してもドキュメント自体はキーワード検索で利用できる
	embedded, err := s.embedChunks(ctx, doc)
	if err != nil {
		s.logger.Warn("chunk embedding failed, semantic search stays cold for this document",
			"documentID", doc.ID.String(),
			"error", err,
		)
		return result, nil
	}
	result.EmbeddedCount = embedded

	return result, nil
}

func (s *CorpusService) embedChunks(ctx context.Context, doc *Document) (int, error) {
	batchSize := s.embedder.MaxBatchSize()
	if batchSize <= 0 {
		batchSize = len(doc.Chunks)
	}

	embeddings := make([]ChunkEmbedding, 0, len(doc.Chunks))
	for start := 0; start < len(doc.Chunks); start += batchSize {
		end := start + batchSize
		if end > len(doc.Chunks) {
			end = len(doc.Chunks)
		}

		vectors, err := s.embedder.BatchEmbed(ctx, doc.Chunks[start:end])
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunks %d-%d: %w", start, end, err)
		}
		if len(vectors) != end-start {
			return 0, fmt.Errorf("embedding count mismatch: want %d, got %d", end-start, len(vectors))
		}

		for i, vec := range vectors {
			embeddings = append(embeddings, ChunkEmbedding{
				Ordinal: start + i,
				Content: doc.Chunks[start+i],
				Vector:  vec,
			})
		}
	}

	if err := s.repo.SaveChunkEmbeddings(ctx, doc.ID, embeddings); err != nil {
		return 0, fmt.Errorf("failed to save chunk embeddings: %w", err)
	}

	return len(embeddings), nil
}

// List は登録済みドキュメントを返す
func (s *CorpusService) List(ctx context.Context) ([]*Document, error) {
	docs, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}
