package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Manshi-Rathour/FilesGPT/internal/model"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Create(ctx context.Context, history *model.ChatHistory) error {
	return r.db.WithContext(ctx).Create(history).Error
}

func (r *HistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ChatHistory, error) {
	var history model.ChatHistory
	err := r.db.WithContext(ctx).First(&history, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *HistoryRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]model.ChatHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var histories []model.ChatHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&histories).Error
	return histories, err
}

func (r *HistoryRepository) DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Delete(&model.ChatHistory{}).Error
}

func (r *HistoryRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.ChatHistory{}).Error
}
