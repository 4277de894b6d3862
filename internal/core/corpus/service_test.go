package corpus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	saved      []*Document
	embeddings map[uuid.UUID][]ChunkEmbedding
	saveErr    error
}

func (r *stubRepo) SaveDocument(ctx context.Context, doc *Document) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, doc)
	return nil
}

func (r *stubRepo) ListDocuments(ctx context.Context) ([]*Document, error) {
	return r.saved, nil
}

func (r *stubRepo) SaveChunkEmbeddings(ctx context.Context, documentID uuid.UUID, embeddings []ChunkEmbedding) error {
	if r.embeddings == nil {
		r.embeddings = make(map[uuid.UUID][]ChunkEmbedding)
	}
	r.embeddings[documentID] = embeddings
	return nil
}

type stubEmbedder struct {
	batchSize int
	calls     int
	err       error
}

func (e *stubEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (e *stubEmbedder) MaxBatchSize() int { return e.batchSize }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSplitFixed(t *testing.T) {
	chunks := SplitFixed("abcdefg", 3)
	assert.Equal(t, []string{"abc", "def", "g"}, chunks)

	assert.Empty(t, SplitFixed("", 3))
	assert.Equal(t, []string{"čćž"}, SplitFixed("čćž", 3))
	assert.Len(t, SplitFixed(strings.Repeat("x", 2500), 0), 3)
}

func TestCorpusService_UploadChunksAndEmbeds(t *testing.T) {
	repo := &stubRepo{}
	embedder := &stubEmbedder{batchSize: 2}
	svc := NewCorpusService(repo,
		WithEmbedder(embedder),
		WithChunkSize(4),
		WithCorpusLogger(discardLogger()),
	)

	result, err := svc.Upload(context.Background(), UploadParams{
		Name:    " pravilnik.txt ",
		Content: "0123456789",
	})
	require.NoError(t, err)
	require.Len(t, repo.saved, 1)

	doc := repo.saved[0]
	assert.Equal(t, "pravilnik.txt", doc.Name)
	assert.Equal(t, DocumentTypeTXT, doc.Type)
	assert.Equal(t, []string{"0123", "4567", "89"}, doc.Chunks)
	assert.Equal(t, 3, result.ChunkCount)
	assert.Equal(t, 3, result.EmbeddedCount)
	assert.Equal(t, 2, embedder.calls)

	stored := repo.embeddings[doc.ID]
	require.Len(t, stored, 3)
	assert.Equal(t, 2, stored[2].Ordinal)
	assert.Equal(t, "89", stored[2].Content)
}

func TestCorpusService_UploadKeepsDocumentWhenEmbeddingFails(t *testing.T) {
	repo := &stubRepo{}
	svc := NewCorpusService(repo,
		WithEmbedder(&stubEmbedder{err: errors.New("quota")}),
		WithCorpusLogger(discardLogger()),
	)

	result, err := svc.Upload(context.Background(), UploadParams{Name: "a.txt", Content: "tekst"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunkCount)
	assert.Zero(t, result.EmbeddedCount)
	assert.Len(t, repo.saved, 1)
}

func TestCorpusService_UploadValidation(t *testing.T) {
	svc := NewCorpusService(&stubRepo{}, WithCorpusLogger(discardLogger()))
	ctx := context.Background()

	_, err := svc.Upload(ctx, UploadParams{Name: "", Content: "x"})
	assert.Error(t, err)

	_, err = svc.Upload(ctx, UploadParams{Name: "a.docx", Content: "x", Type: "docx"})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = svc.Upload(ctx, UploadParams{Name: "a.txt", Content: "  \n"})
	assert.ErrorIs(t, err, ErrEmptyContent)

	_, err = svc.Upload(ctx, UploadParams{Name: "a.txt", Content: string([]byte{0xff, 0xfe})})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestCorpusService_UploadPropagatesSaveError(t *testing.T) {
	svc := NewCorpusService(&stubRepo{saveErr: errors.New("db down")}, WithCorpusLogger(discardLogger()))

	_, err := svc.Upload(context.Background(), UploadParams{Name: "a.txt", Content: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
