package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Chunk is an embedded text segment stored in the vector index. The primary
// key is derived from (user_id, document_id, chunk_index), so re-ingesting a
// document overwrites rows instead of growing the table.
type Chunk struct {
	ID         string          `gorm:"primaryKey;size:200" json:"id"`
	UserID     string          `gorm:"size:64;not null;index" json:"user_id"`
	DocumentID string          `gorm:"size:64;not null;index" json:"document_id"`
	ChunkIndex int             `gorm:"not null" json:"chunk_index"`
	Source     string          `gorm:"size:1000" json:"source"`
	Content    string          `gorm:"type:text;not null" json:"content"`
	Embedding  pgvector.Vector `gorm:"type:vector(1536)" json:"-"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Chunk) TableName() string {
	return "chunks"
}
