package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/safety-rag/internal/core/corpus"
	"github.com/jinford/safety-rag/internal/core/llm"
	"github.com/jinford/safety-rag/internal/core/retrieval"
)

type stubLLM struct {
	requests []llm.CompletionRequest
	content  string
	err      error
}

func (c *stubLLM) Complete(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return llm.CompletionResponse{}, c.err
	}
	return llm.CompletionResponse{Content: c.content, Model: "test-model", TokensUsed: 10}, nil
}

type stubCredentials struct {
	value mo.Option[string]
	err   error
	saved string
}

func (s *stubCredentials) Get(ctx context.Context) (mo.Option[string], error) {
	return s.value, s.err
}

func (s *stubCredentials) Save(ctx context.Context, credential string) error {
	s.saved = credential
	return nil
}

type stubCorpus struct {
	docs  []*corpus.Document
	calls int
}

func (c *stubCorpus) ListDocuments(ctx context.Context) ([]*corpus.Document, error) {
	c.calls++
	return c.docs, nil
}

type stubOracle struct {
	matches []retrieval.Match
	calls   int
}

func (o *stubOracle) Match(ctx context.Context, query string, credential string) ([]retrieval.Match, error) {
	o.calls++
	return o.matches, nil
}

type panickingRetriever struct{}

func (panickingRetriever) Retrieve(ctx context.Context, message string, credential string) *retrieval.Result {
	panic("boom")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	llm    *stubLLM
	oracle *stubOracle
	corpus *stubCorpus
	svc    *ChatService
}

func newFixture(cred mo.Option[string], docs []*corpus.Document) *fixture {
	f := &fixture{
		llm:    &stubLLM{content: "Odgovor."},
		oracle: &stubOracle{},
		corpus: &stubCorpus{docs: docs},
	}
	logger := quietLogger()
	retriever := retrieval.NewRetrievalService(
		[]retrieval.Strategy{
			retrieval.NewSemanticStrategy(f.oracle),
			retrieval.NewKeywordStrategy(f.corpus, 0),
		},
		retrieval.WithTranslator(retrieval.NewQueryTranslator(f.llm, "", "")),
		retrieval.WithRetrievalLogger(logger),
	)
	f.svc = NewChatService(
		&stubCredentials{value: cred},
		retriever,
		NewAnswerGenerator(f.llm, DefaultGenerationParams(), logger),
		WithChatLogger(logger),
	)
	return f
}

func TestGenerateResponse_MissingCredentialSkipsNetwork(t *testing.T) {
	f := newFixture(mo.None[string](), nil)

	reply := f.svc.GenerateResponse(context.Background(), "Šta je procedura za X?", ConversationContext{})

	assert.Equal(t, MsgMissingCredential, reply)
	assert.Empty(t, f.llm.requests)
	assert.Zero(t, f.oracle.calls)
	assert.Zero(t, f.corpus.calls)
}

func TestGenerateResponse_BlankCredentialTreatedAsMissing(t *testing.T) {
	f := newFixture(mo.Some("   "), nil)

	assert.Equal(t, MsgMissingCredential, f.svc.GenerateResponse(context.Background(), "x", ConversationContext{}))
	assert.Empty(t, f.llm.requests)
}

func TestGenerateResponse_EmptyCorpusFreshQuestion(t *testing.T) {
	f := newFixture(mo.Some("sk-test"), nil)
	f.llm.content = "Šta je procedura za X?"

	reply := f.svc.GenerateResponse(context.Background(), "Šta je procedura za X?", ConversationContext{})

	assert.Equal(t, MsgNoDocuments, reply)
	// 翻訳の1回のみで、回答生成は呼ばれない
	require.Len(t, f.llm.requests, 1)
	assert.Zero(t, f.llm.requests[0].MaxTokens)
}

func TestGenerateResponse_EmptyCorpusFollowUpStillGenerates(t *testing.T) {
	f := newFixture(mo.Some("sk-test"), nil)
	f.llm.content = "nastavi dalje"

	prior := mo.Some(ConversationTurn{UserText: "Šta je OZO?", AssistantText: "Lična zaštitna oprema."})
	reply := f.svc.GenerateResponse(context.Background(), "nastavi dalje", ConversationContext{Prior: prior})

	assert.Equal(t, "nastavi dalje", reply)
	require.Len(t, f.llm.requests, 2)

	gen := f.llm.requests[1]
	require.Len(t, gen.Messages, 4)
	assert.Contains(t, gen.Messages[0].Content, ContinuationPlaceholder)
	assert.Equal(t, "nastavi dalje", gen.Messages[3].Content)
	assert.Equal(t, "sk-test", gen.Credential)
	assert.Equal(t, 0.7, gen.Temperature)
	assert.Equal(t, 1000, gen.MaxTokens)
	assert.Equal(t, 0.1, gen.PresencePenalty)
	assert.Equal(t, 0.1, gen.FrequencyPenalty)
}

func TestGenerateResponse_KeywordFallbackFeedsPrompt(t *testing.T) {
	docs := []*corpus.Document{{Name: "pravilnik.txt", Chunks: []string{"Kaciga je obavezna na gradilištu."}}}
	f := newFixture(mo.Some("sk-test"), docs)
	f.llm.content = "kaciga obavezna"

	reply := f.svc.Respond(context.Background(), "Да ли је кацига обавезна?", ConversationContext{})

	assert.Equal(t, "kaciga obavezna", reply.Text)
	assert.Equal(t, []string{"pravilnik.txt"}, reply.Sources)
	assert.Equal(t, retrieval.StrategyKeyword, reply.Strategy)

	require.Len(t, f.llm.requests, 2)
	system := f.llm.requests[1].Messages[0].Content
	assert.Contains(t, system, "[pravilnik.txt]\nKaciga je obavezna na gradilištu.")
	assert.Contains(t, system, scriptInstructionCyrillic)
}

func TestGenerateResponse_GenerationErrorMapsToApology(t *testing.T) {
	f := newFixture(mo.Some("sk-test"), nil)
	f.oracle.matches = []retrieval.Match{{Chunk: "sadržaj"}}
	f.llm.err = errors.New("service unavailable")

	reply := f.svc.GenerateResponse(context.Background(), "pitanje", ConversationContext{})
	assert.Equal(t, fmt.Sprintf(MsgErrorFormat, "service unavailable"), reply)
}

func TestGenerateResponse_CredentialStoreError(t *testing.T) {
	logger := quietLogger()
	svc := NewChatService(
		&stubCredentials{err: errors.New("db down")},
		panickingRetriever{},
		NewAnswerGenerator(&stubLLM{}, DefaultGenerationParams(), logger),
		WithChatLogger(logger),
	)

	assert.Equal(t, fmt.Sprintf(MsgErrorFormat, "db down"), svc.GenerateResponse(context.Background(), "x", ConversationContext{}))
}

func TestGenerateResponse_RecoversFromPanic(t *testing.T) {
	logger := quietLogger()
	svc := NewChatService(
		&stubCredentials{value: mo.Some("sk")},
		panickingRetriever{},
		NewAnswerGenerator(&stubLLM{}, DefaultGenerationParams(), logger),
		WithChatLogger(logger),
	)

	assert.Equal(t, MsgUnexpected, svc.GenerateResponse(context.Background(), "x", ConversationContext{}))
}

func TestAnswerGenerator_FailureMapping(t *testing.T) {
	logger := quietLogger()
	msgs := []llm.Message{{Role: llm.RoleUser, Content: "x"}}

	tests := []struct {
		name    string
		client  *stubLLM
		want    string
	}{
		{name: "empty content", client: &stubLLM{content: "  "}, want: MsgNoResponse},
		{name: "no choices", client: &stubLLM{err: fmt.Errorf("wrap: %w", llm.ErrNoChoices)}, want: MsgNoResponse},
		{name: "invalid key", client: &stubLLM{err: fmt.Errorf("401: %w", llm.ErrInvalidCredential)}, want: MsgInvalidCredential},
		{name: "generic", client: &stubLLM{err: errors.New("timeout")}, want: fmt.Sprintf(MsgErrorFormat, "timeout")},
		{name: "success trimmed", client: &stubLLM{content: " Zdravo \n"}, want: "Zdravo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewAnswerGenerator(tt.client, DefaultGenerationParams(), logger)
			assert.Equal(t, tt.want, g.Answer(context.Background(), msgs, "sk"))
		})
	}
}

func TestSaveCredential(t *testing.T) {
	creds := &stubCredentials{}
	svc := NewChatService(creds, panickingRetriever{}, NewAnswerGenerator(&stubLLM{}, DefaultGenerationParams(), quietLogger()))

	require.NoError(t, svc.SaveCredential(context.Background(), " sk-new "))
	assert.Equal(t, "sk-new", creds.saved)
	assert.Error(t, svc.SaveCredential(context.Background(), " "))
}

func TestFallbackCredentialStore(t *testing.T) {
	ctx := context.Background()
	primary := &stubCredentials{value: mo.None[string]()}
	store := NewFallbackCredentialStore(primary, NewStaticCredentialStore(" sk-env "))

	cred, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, mo.Some("sk-env"), cred)

	primary.value = mo.Some("sk-db")
	cred, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, mo.Some("sk-db"), cred)

	require.NoError(t, store.Save(ctx, "sk-saved"))
	assert.Equal(t, "sk-saved", primary.saved)

	assert.ErrorIs(t, NewStaticCredentialStore("").Save(ctx, "x"), ErrReadOnlyCredentialStore)
	empty, err := NewStaticCredentialStore("").Get(ctx)
	require.NoError(t, err)
	assert.True(t, empty.IsAbsent())
}
