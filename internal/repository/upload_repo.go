package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Manshi-Rathour/FilesGPT/internal/model"
)

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, upload *model.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *UploadRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Upload, error) {
	var upload model.Upload
	err := r.db.WithContext(ctx).First(&upload, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *UploadRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Upload, error) {
	var upload model.Upload
	err := r.db.WithContext(ctx).First(&upload, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *UploadRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Upload, int64, error) {
	var uploads []model.Upload
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Upload{}).Where("user_id = ?", userID)
	query.Count(&total)
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&uploads).Error
	return uploads, total, err
}

// SetStatus updates the pipeline stage with a single column write.
func (r *UploadRepository) SetStatus(ctx context.Context, id uuid.UUID, status model.UploadStatus) error {
	return r.db.WithContext(ctx).Model(&model.Upload{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// MarkFailed records the failing stage so the caller can report it.
func (r *UploadRepository) MarkFailed(ctx context.Context, id uuid.UUID, stage string, cause error) error {
	msg := stage
	if cause != nil {
		msg = stage + ": " + cause.Error()
	}
	return r.db.WithContext(ctx).Model(&model.Upload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.UploadStatusFailed,
			"error_message": msg,
		}).Error
}

// MarkReady finalizes a successful ingestion: chunk count and ready status
// land in one UPDATE so readers never observe a half-finished record.
func (r *UploadRepository) MarkReady(ctx context.Context, id uuid.UUID, chunkCount int) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Upload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        model.UploadStatusReady,
			"chunk_count":   chunkCount,
			"error_message": "",
			"processed_at":  &now,
		}).Error
}

// DeleteForUser removes one upload owned by the user. Deleting a record that
// is already gone is not an error.
func (r *UploadRepository) DeleteForUser(ctx context.Context, id, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Upload{})
	return res.Error
}

func (r *UploadRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Upload{}).Error
}

// ExistsForUser reports whether the upload exists and belongs to the user.
func (r *UploadRepository) ExistsForUser(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	_, err := r.FindByIDForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
