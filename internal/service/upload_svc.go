package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Manshi-Rathour/FilesGPT/internal/extract"
	"github.com/Manshi-Rathour/FilesGPT/internal/model"
	"github.com/Manshi-Rathour/FilesGPT/internal/repository"
)

// UploadService stores incoming files, records upload metadata and hands the
// extracted text to the ingestion pipeline.
type UploadService struct {
	uploads     *repository.UploadRepository
	ingest      *IngestService
	web         *extract.WebFetcher
	storagePath string
	log         *zap.Logger
}

func NewUploadService(uploads *repository.UploadRepository, ingest *IngestService, web *extract.WebFetcher, storagePath string, log *zap.Logger) *UploadService {
	return &UploadService{
		uploads:     uploads,
		ingest:      ingest,
		web:         web,
		storagePath: storagePath,
		log:         log,
	}
}

// UploadFile stores the file, extracts its text and ingests it. The upload
// record is created before ingestion with ChunkCount 0 and finalized by the
// pipeline.
func (s *UploadService) UploadFile(ctx context.Context, userID uuid.UUID, filename string, reader io.Reader) (*model.Upload, int, error) {
	id := uuid.New()
	storedAs := filepath.Join(s.storagePath, userID.String(), id.String()+"_"+filename)

	if err := os.MkdirAll(filepath.Dir(storedAs), 0o755); err != nil {
		return nil, 0, err
	}
	dst, err := os.Create(storedAs)
	if err != nil {
		return nil, 0, err
	}
	size, err := io.Copy(dst, reader)
	if err != nil {
		dst.Close()
		os.Remove(storedAs)
		return nil, 0, err
	}
	dst.Close()

	upload := &model.Upload{
		UserID:     userID,
		Source:     filename,
		SourceType: model.UploadSourceFile,
		StoredAs:   storedAs,
		Status:     model.UploadStatusPending,
		Metadata: model.JSONMap{
			"filename":   filename,
			"extension":  strings.ToLower(filepath.Ext(filename)),
			"size_bytes": size,
		},
	}
	upload.ID = id
	if err := s.uploads.Create(ctx, upload); err != nil {
		os.Remove(storedAs)
		return nil, 0, err
	}

	text := extract.FromFile(storedAs)
	return s.process(ctx, upload, text, filename)
}

// UploadWebsite fetches a page, extracts its visible text and ingests it.
func (s *UploadService) UploadWebsite(ctx context.Context, userID uuid.UUID, url string) (*model.Upload, int, error) {
	upload := &model.Upload{
		UserID:     userID,
		Source:     url,
		SourceType: model.UploadSourceWebsite,
		Status:     model.UploadStatusPending,
		Metadata:   model.JSONMap{"url": url},
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		return nil, 0, err
	}

	text := s.web.Extract(ctx, url)
	return s.process(ctx, upload, text, url)
}

func (s *UploadService) process(ctx context.Context, upload *model.Upload, text, source string) (*model.Upload, int, error) {
	count, err := s.ingest.Ingest(ctx, upload.UserID, upload.ID, text, source)
	if err != nil {
		return upload, 0, err
	}
	upload.ChunkCount = count
	upload.Status = model.UploadStatusReady
	return upload, count, nil
}

// List returns the user's uploads, newest first.
func (s *UploadService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Upload, int64, error) {
	return s.uploads.FindByUserID(ctx, userID, limit, offset)
}

// Get returns one upload, scoped to its owner.
func (s *UploadService) Get(ctx context.Context, userID, id uuid.UUID) (*model.Upload, error) {
	return s.uploads.FindByIDForUser(ctx, id, userID)
}

// Exists reports whether the upload exists and belongs to the user.
func (s *UploadService) Exists(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	return s.uploads.ExistsForUser(ctx, id, userID)
}
