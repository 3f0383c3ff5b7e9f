package vectorstore

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Manshi-Rathour/FilesGPT/internal/model"
)

// PGVector stores embeddings in the chunks table and ranks queries with the
// pgvector cosine distance operator. The table's vector dimension is fixed
// at migration time and must match the embedding model's output.
type PGVector struct {
	db *gorm.DB
}

func NewPGVector(db *gorm.DB) *PGVector {
	return &PGVector{db: db}
}

func (s *PGVector) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]model.Chunk, len(records))
	for i, r := range records {
		rows[i] = model.Chunk{
			ID:         r.ID,
			UserID:     r.UserID,
			DocumentID: r.DocumentID,
			ChunkIndex: r.ChunkIndex,
			Source:     r.Source,
			Content:    r.Content,
			Embedding:  pgvector.NewVector(r.Vector),
		}
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "document_id", "chunk_index", "source", "content", "embedding", "updated_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("%w: upsert of %d chunks (%s..%s): %v",
			ErrIndexUnavailable, len(records), records[0].ID, records[len(records)-1].ID, err)
	}
	return nil
}

func (s *PGVector) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	var rows []struct {
		model.Chunk
		Distance float64 `gorm:"column:distance"`
	}

	query := s.db.WithContext(ctx).
		Table("chunks").
		Select("*, embedding <=> ? AS distance", pgvector.NewVector(vector)).
		Where("user_id = ?", filter.UserID)
	if filter.DocumentID != "" {
		query = query.Where("document_id = ?", filter.DocumentID)
	}

	if err := query.Order("distance ASC").Limit(topK).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: similarity query: %v", ErrIndexUnavailable, err)
	}

	matches := make([]Match, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, Match{
			ID:         r.ID,
			Score:      1 - r.Distance, // cosine similarity
			UserID:     r.UserID,
			DocumentID: r.DocumentID,
			ChunkIndex: r.ChunkIndex,
			Source:     r.Source,
			Content:    r.Content,
		})
	}
	return matches, nil
}

func (s *PGVector) Delete(ctx context.Context, filter Filter) (int64, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", filter.UserID)
	if filter.DocumentID != "" {
		query = query.Where("document_id = ?", filter.DocumentID)
	}
	if filter.ChunkIndexGTE != nil {
		query = query.Where("chunk_index >= ?", *filter.ChunkIndexGTE)
	}

	res := query.Delete(&model.Chunk{})
	if res.Error != nil {
		return 0, fmt.Errorf("%w: delete by filter: %v", ErrIndexUnavailable, res.Error)
	}
	return res.RowsAffected, nil
}
