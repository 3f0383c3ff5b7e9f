package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Manshi-Rathour/FilesGPT/internal/chunker"
	"github.com/Manshi-Rathour/FilesGPT/internal/model"
	"github.com/Manshi-Rathour/FilesGPT/internal/vectorstore"
)

// Embedder is the text-to-vector dependency of the pipeline. Both methods
// must use the same pinned model; EmbeddingService satisfies this.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// UploadTracker records ingestion progress on the document metadata record.
// Each call is a single atomic column update, never read-modify-write.
type UploadTracker interface {
	SetStatus(ctx context.Context, id uuid.UUID, status model.UploadStatus) error
	MarkFailed(ctx context.Context, id uuid.UUID, stage string, cause error) error
	MarkReady(ctx context.Context, id uuid.UUID, chunkCount int) error
}

// IngestService drives chunk -> embed -> upsert for one document. Stages run
// strictly in order; a stage failure marks the document failed and later
// stages never run. Chunk ids are deterministic, so retrying a failed or
// already-ingested document overwrites rather than duplicates.
type IngestService struct {
	splitter  *chunker.Splitter
	embedder  Embedder
	store     vectorstore.Store
	uploads   UploadTracker
	batchSize int
	log       *zap.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewIngestService(splitter *chunker.Splitter, embedder Embedder, store vectorstore.Store, uploads UploadTracker, batchSize int, log *zap.Logger) *IngestService {
	if batchSize <= 0 {
		batchSize = 64
	}
	return &IngestService{
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		uploads:   uploads,
		batchSize: batchSize,
		log:       log,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor serializes ingestions of the same document so concurrent
// re-ingestions cannot interleave partial overwrites. Different documents
// proceed independently.
func (s *IngestService) lockFor(documentID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[documentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[documentID] = l
	}
	return l
}

// Ingest chunks text, embeds the chunks in batches and upserts them into the
// vector index, then finalizes the document's metadata. It returns the
// number of chunks stored.
func (s *IngestService) Ingest(ctx context.Context, userID, documentID uuid.UUID, text, source string) (int, error) {
	lock := s.lockFor(documentID)
	lock.Lock()
	defer lock.Unlock()

	uid := userID.String()
	did := documentID.String()

	if err := s.uploads.SetStatus(ctx, documentID, model.UploadStatusChunking); err != nil {
		return 0, err
	}
	chunks := s.splitter.Chunk(text, source, uid, did)
	if len(chunks) == 0 {
		s.fail(ctx, documentID, "chunking", ErrNoExtractableText)
		return 0, ErrNoExtractableText
	}
	s.log.Info("chunked document",
		zap.String("document_id", did),
		zap.Int("chunks", len(chunks)))

	if err := s.uploads.SetStatus(ctx, documentID, model.UploadStatusEmbedding); err != nil {
		return 0, err
	}
	for start := 0; start < len(chunks); start += s.batchSize {
		end := start + s.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vectors, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			s.fail(ctx, documentID, "embedding", err)
			return 0, err
		}

		records := make([]vectorstore.Record, len(batch))
		for i, c := range batch {
			records[i] = vectorstore.Record{
				ID:         c.ID,
				Vector:     vectors[i],
				UserID:     c.UserID,
				DocumentID: c.DocumentID,
				ChunkIndex: c.Index,
				Source:     c.Source,
				Content:    c.Text,
			}
		}
		if err := s.store.Upsert(ctx, records); err != nil {
			s.fail(ctx, documentID, "upserting", err)
			return 0, err
		}
	}
	if err := s.uploads.SetStatus(ctx, documentID, model.UploadStatusUpserted); err != nil {
		return 0, err
	}

	// A re-ingested document may have shrunk; chunks past the new count
	// belong to the previous version and would keep answering queries.
	count := len(chunks)
	if _, err := s.store.Delete(ctx, vectorstore.Filter{UserID: uid, DocumentID: did, ChunkIndexGTE: &count}); err != nil {
		s.fail(ctx, documentID, "trimming", err)
		return 0, err
	}

	if err := s.uploads.MarkReady(ctx, documentID, count); err != nil {
		return count, err
	}
	s.log.Info("document ready",
		zap.String("document_id", did),
		zap.Int("chunk_count", count))
	return count, nil
}

func (s *IngestService) fail(ctx context.Context, documentID uuid.UUID, stage string, cause error) {
	s.log.Error("ingestion failed",
		zap.String("document_id", documentID.String()),
		zap.String("stage", stage),
		zap.Error(cause))
	if err := s.uploads.MarkFailed(ctx, documentID, stage, cause); err != nil {
		s.log.Error("could not record ingestion failure",
			zap.String("document_id", documentID.String()),
			zap.Error(err))
	}
}
