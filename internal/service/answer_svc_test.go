package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Manshi-Rathour/FilesGPT/internal/chunker"
	"github.com/Manshi-Rathour/FilesGPT/internal/vectorstore"
)

type fakeChat struct {
	calls       int
	failures    int
	lastIn      []*schema.Message
	reply       string
	hadDeadline bool
}

func (f *fakeChat) Generate(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.calls++
	f.lastIn = in
	_, f.hadDeadline = ctx.Deadline()
	if f.calls <= f.failures {
		return nil, errors.New("upstream timeout")
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChat) Stream(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

// seedAnswerStore loads four chunks for two users. The query vector [1,0,0]
// ranks u1's doc-1 chunks first.
func seedAnswerStore(t *testing.T, userID, docID, otherDocID uuid.UUID) *vectorstore.Memory {
	t.Helper()
	store := vectorstore.NewMemory()
	uid := userID.String()
	records := []vectorstore.Record{
		{ID: chunker.ChunkID(uid, docID.String(), 0), Vector: []float32{1, 0, 0},
			UserID: uid, DocumentID: docID.String(), ChunkIndex: 0, Source: "guide.pdf",
			Content: "The capital of France is Paris."},
		{ID: chunker.ChunkID(uid, docID.String(), 1), Vector: []float32{0.9, 0.1, 0},
			UserID: uid, DocumentID: docID.String(), ChunkIndex: 1, Source: "guide.pdf",
			Content: "Paris sits on the Seine."},
		{ID: chunker.ChunkID(uid, otherDocID.String(), 0), Vector: []float32{0, 1, 0},
			UserID: uid, DocumentID: otherDocID.String(), ChunkIndex: 0, Source: "notes.txt",
			Content: "Berlin is the capital of Germany."},
		{ID: chunker.ChunkID("other-user", docID.String(), 0), Vector: []float32{1, 0, 0},
			UserID: "other-user", DocumentID: docID.String(), ChunkIndex: 0, Source: "private.pdf",
			Content: "Another tenant's secret."},
	}
	require.NoError(t, store.Upsert(context.Background(), records))
	return store
}

func TestAnswerEmptyQuestion(t *testing.T) {
	svc := NewAnswerService(&fakeEmbedder{embedFn: constantVector}, vectorstore.NewMemory(), &fakeChat{}, zap.NewNop())

	_, err := svc.Answer(context.Background(), AnswerRequest{UserID: uuid.New(), Question: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAnswerNoMatchesSkipsGeneration(t *testing.T) {
	chat := &fakeChat{reply: "should never be used"}
	svc := NewAnswerService(&fakeEmbedder{embedFn: constantVector}, vectorstore.NewMemory(), chat, zap.NewNop())

	res, err := svc.Answer(context.Background(), AnswerRequest{UserID: uuid.New(), Question: "anything?"})
	require.NoError(t, err)
	assert.Equal(t, NoMatchesAnswer, res.Answer)
	assert.Zero(t, res.Matches)
	assert.Empty(t, res.Sources)
	assert.Zero(t, chat.calls, "no matches must not reach the chat model")
}

func TestAnswerGroundedInRetrievedContext(t *testing.T) {
	userID := uuid.New()
	docID := uuid.New()
	otherDocID := uuid.New()
	store := seedAnswerStore(t, userID, docID, otherDocID)
	chat := &fakeChat{reply: "Paris."}
	svc := NewAnswerService(&fakeEmbedder{embedFn: constantVector}, store, chat, zap.NewNop())

	res, err := svc.Answer(context.Background(), AnswerRequest{
		UserID:   userID,
		Question: "What is the capital of France?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris.", res.Answer)
	assert.Equal(t, 3, res.Matches)
	assert.Equal(t, []string{"guide.pdf", "notes.txt"}, res.Sources, "sources de-duplicate preserving rank")

	require.Len(t, chat.lastIn, 2)
	assert.Equal(t, schema.System, chat.lastIn[0].Role)
	prompt := chat.lastIn[1].Content
	assert.Contains(t, prompt, "Context:\n\n")
	assert.Contains(t, prompt, "Question: What is the capital of France?")
	assert.Contains(t, prompt, "The capital of France is Paris.")
	assert.NotContains(t, prompt, "Another tenant's secret.", "other tenants never leak into the prompt")
	// Closest chunk appears before the next-closest one.
	assert.Less(t,
		strings.Index(prompt, "The capital of France is Paris."),
		strings.Index(prompt, "Paris sits on the Seine."))
}

func TestAnswerDocumentScope(t *testing.T) {
	userID := uuid.New()
	docID := uuid.New()
	otherDocID := uuid.New()
	store := seedAnswerStore(t, userID, docID, otherDocID)
	chat := &fakeChat{reply: "Berlin."}
	svc := NewAnswerService(&fakeEmbedder{embedFn: constantVector}, store, chat, zap.NewNop())

	res, err := svc.Answer(context.Background(), AnswerRequest{
		UserID:     userID,
		DocumentID: &otherDocID,
		Question:   "What is the capital of Germany?",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, []string{"notes.txt"}, res.Sources)
	assert.NotContains(t, chat.lastIn[1].Content, "The capital of France is Paris.")
}

func TestAnswerTopKLimit(t *testing.T) {
	userID := uuid.New()
	docID := uuid.New()
	otherDocID := uuid.New()
	store := seedAnswerStore(t, userID, docID, otherDocID)
	svc := NewAnswerService(&fakeEmbedder{embedFn: constantVector}, store, &fakeChat{reply: "Paris."}, zap.NewNop())

	res, err := svc.Answer(context.Background(), AnswerRequest{
		UserID:   userID,
		Question: "capital?",
		TopK:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matches)
	assert.Equal(t, []string{"guide.pdf"}, res.Sources)
}

func TestAnswerGenerationCarriesDeadline(t *testing.T) {
	userID := uuid.New()
	docID := uuid.New()
	otherDocID := uuid.New()
	store := seedAnswerStore(t, userID, docID, otherDocID)
	chat := &fakeChat{reply: "Paris."}
	svc := NewAnswerService(&fakeEmbedder{embedFn: constantVector}, store, chat, zap.NewNop())

	_, err := svc.Answer(context.Background(), AnswerRequest{UserID: userID, Question: "capital?"})
	require.NoError(t, err)
	assert.True(t, chat.hadDeadline, "generation must run under a bounded deadline even when the request context has none")
}

func TestAnswerRetriesOnceThenSucceeds(t *testing.T) {
	userID := uuid.New()
	docID := uuid.New()
	otherDocID := uuid.New()
	store := seedAnswerStore(t, userID, docID, otherDocID)
	chat := &fakeChat{reply: "Paris.", failures: 1}
	svc := NewAnswerService(&fakeEmbedder{embedFn: constantVector}, store, chat, zap.NewNop())

	res, err := svc.Answer(context.Background(), AnswerRequest{UserID: userID, Question: "capital?"})
	require.NoError(t, err)
	assert.Equal(t, "Paris.", res.Answer)
	assert.Equal(t, 2, chat.calls)
}

func TestAnswerGenerationUnavailable(t *testing.T) {
	userID := uuid.New()
	docID := uuid.New()
	otherDocID := uuid.New()
	store := seedAnswerStore(t, userID, docID, otherDocID)
	chat := &fakeChat{failures: 2}
	svc := NewAnswerService(&fakeEmbedder{embedFn: constantVector}, store, chat, zap.NewNop())

	_, err := svc.Answer(context.Background(), AnswerRequest{UserID: userID, Question: "capital?"})
	require.ErrorIs(t, err, ErrGenerationUnavailable)
	assert.Equal(t, 2, chat.calls, "exactly one retry before surfacing the outage")
}

func TestAnswerEmbeddingFailurePropagates(t *testing.T) {
	embedder := &fakeEmbedder{embedFn: constantVector, err: ErrEmbeddingUnavailable}
	svc := NewAnswerService(embedder, vectorstore.NewMemory(), &fakeChat{}, zap.NewNop())

	_, err := svc.Answer(context.Background(), AnswerRequest{UserID: uuid.New(), Question: "capital?"})
	assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
}
