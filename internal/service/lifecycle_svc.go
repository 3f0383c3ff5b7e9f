package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Manshi-Rathour/FilesGPT/internal/vectorstore"
)

// UploadPurger removes document metadata records. Deletes are idempotent:
// removing an already-removed record succeeds with nothing to do.
type UploadPurger interface {
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// HistoryPurger removes chat transcripts tied to a document or user.
type HistoryPurger interface {
	DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

// StepOutcome is the result of one deletion step. A non-fatal failed step is
// logged and the remaining steps still run; a fatal one stops the cascade.
type StepOutcome struct {
	Step    string `json:"step"`
	Removed int64  `json:"removed,omitempty"`
	Error   string `json:"error,omitempty"`
	Fatal   bool   `json:"fatal,omitempty"`
}

type DeletionReport struct {
	Steps []StepOutcome `json:"steps"`
}

// LifecycleService cascades deletion across the vector index, the document
// metadata store and chat history. It is the only component allowed to
// delete across all three. The vector-index step is best effort: an orphaned
// vector is a lesser harm than a half-deleted account, so its failure is
// demoted to a warning and the metadata steps still run.
type LifecycleService struct {
	store   vectorstore.Store
	uploads UploadPurger
	history HistoryPurger
	log     *zap.Logger
}

func NewLifecycleService(store vectorstore.Store, uploads UploadPurger, history HistoryPurger, log *zap.Logger) *LifecycleService {
	return &LifecycleService{store: store, uploads: uploads, history: history, log: log}
}

// DeleteDocument removes a document's vectors, its metadata record and any
// transcripts referencing it. Running it twice is a no-op the second time.
func (s *LifecycleService) DeleteDocument(ctx context.Context, userID, documentID uuid.UUID) (*DeletionReport, error) {
	report := &DeletionReport{}

	removed, err := s.store.Delete(ctx, vectorstore.Filter{
		UserID:     userID.String(),
		DocumentID: documentID.String(),
	})
	report.addStep("vectors", removed, err, false)
	if err != nil {
		s.log.Warn("vector delete failed, continuing cascade",
			zap.String("document_id", documentID.String()),
			zap.Error(err))
	}

	if err := s.uploads.DeleteForUser(ctx, documentID, userID); err != nil {
		report.addStep("metadata", 0, err, true)
		return report, err
	}
	report.addStep("metadata", 0, nil, false)

	if err := s.history.DeleteByDocumentID(ctx, documentID); err != nil {
		report.addStep("history", 0, err, true)
		return report, err
	}
	report.addStep("history", 0, nil, false)

	return report, nil
}

// DeleteAllForUser removes every vector, upload record and transcript owned
// by the user.
func (s *LifecycleService) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (*DeletionReport, error) {
	report := &DeletionReport{}

	removed, err := s.store.Delete(ctx, vectorstore.Filter{UserID: userID.String()})
	report.addStep("vectors", removed, err, false)
	if err != nil {
		s.log.Warn("vector delete failed, continuing cascade",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}

	if err := s.uploads.DeleteAllForUser(ctx, userID); err != nil {
		report.addStep("metadata", 0, err, true)
		return report, err
	}
	report.addStep("metadata", 0, nil, false)

	if err := s.history.DeleteAllForUser(ctx, userID); err != nil {
		report.addStep("history", 0, err, true)
		return report, err
	}
	report.addStep("history", 0, nil, false)

	return report, nil
}

func (r *DeletionReport) addStep(step string, removed int64, err error, fatal bool) {
	outcome := StepOutcome{Step: step, Removed: removed, Fatal: fatal}
	if err != nil {
		outcome.Error = err.Error()
	}
	r.Steps = append(r.Steps, outcome)
}
