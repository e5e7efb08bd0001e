package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"holistica/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// UpsertBatch inserts chunk records, replacing rows with the same chunk ID.
func (r *ChunkRepository) UpsertBatch(records []model.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chunk_id"}},
		UpdateAll: true,
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("upsert chunk records failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) ListByCollection(collection string) ([]model.ChunkRecord, error) {
	var records []model.ChunkRecord
	if err := r.db.Where("collection = ?", collection).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list chunk records failed: %w", err)
	}
	return records, nil
}

func (r *ChunkRepository) DeleteByCollection(collection string) error {
	if err := r.db.Where("collection = ?", collection).Delete(&model.ChunkRecord{}).Error; err != nil {
		return fmt.Errorf("delete chunk records by collection failed: %w", err)
	}
	return nil
}

func (r *ChunkRepository) DeleteByFilename(collection, filename string) error {
	err := r.db.Where("collection = ? AND filename = ?", collection, filename).
		Delete(&model.ChunkRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete chunk records by filename failed: %w", err)
	}
	return nil
}
