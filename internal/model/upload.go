package model

import (
	"time"

	"github.com/google/uuid"
)

type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusChunking  UploadStatus = "chunking"
	UploadStatusEmbedding UploadStatus = "embedding"
	UploadStatusUpserted  UploadStatus = "upserted"
	UploadStatusReady     UploadStatus = "ready"
	UploadStatusFailed    UploadStatus = "failed"
)

type UploadSourceType string

const (
	UploadSourceFile    UploadSourceType = "file"
	UploadSourceWebsite UploadSourceType = "website"
)

// Upload is the metadata record for an ingested document. ChunkCount stays
// zero until ingestion finishes; Status tracks the ingestion pipeline stage.
type Upload struct {
	BaseModel
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Source       string           `gorm:"size:1000;not null" json:"source"`
	SourceType   UploadSourceType `gorm:"size:50;default:'file'" json:"source_type"`
	StoredAs     string           `gorm:"size:1000" json:"stored_as,omitempty"`
	ChunkCount   int              `gorm:"default:0" json:"chunk_count"`
	Status       UploadStatus     `gorm:"size:50;default:'pending'" json:"status"`
	ErrorMessage string           `gorm:"type:text" json:"error_message,omitempty"`
	Metadata     JSONMap          `gorm:"type:jsonb" json:"metadata,omitempty"`
	ProcessedAt  *time.Time       `json:"processed_at,omitempty"`
}

func (Upload) TableName() string {
	return "uploads"
}
