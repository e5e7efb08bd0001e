package mysqlstore

import (
	"context"
	"sort"

	"holistica/internal/model"
	"holistica/internal/repository"
	"holistica/internal/vectorstore"
)

// Store keeps embedding records in MySQL rows and scores them in process,
// the same brute-force scan the memory driver does. It exists as an optional
// deployment convenience; the question-answering core never relies on rows
// surviving a restart.
type Store struct {
	repo     *repository.ChunkRepository
	distance func(a, b []float32) float64
}

func New(repo *repository.ChunkRepository, metric string) *Store {
	return &Store{
		repo:     repo,
		distance: vectorstore.DistanceFunc(metric),
	}
}

// CreateCollection clears any rows left under the collection name, so a
// fresh collection always starts empty.
func (s *Store) CreateCollection(_ context.Context, name string) error {
	return s.repo.DeleteByCollection(name)
}

func (s *Store) DeleteCollection(_ context.Context, name string) error {
	return s.repo.DeleteByCollection(name)
}

func (s *Store) Insert(_ context.Context, name string, records []vectorstore.Record) error {
	rows := make([]model.ChunkRecord, len(records))
	for i, r := range records {
		rows[i] = model.ChunkRecord{
			ChunkID:    r.ID,
			Collection: name,
			Filename:   r.Metadata.Filename,
			ChunkIndex: r.Metadata.ChunkIndex,
			Content:    r.Content,
			ChunkSize:  r.Metadata.ChunkSize,
		}
		rows[i].SetEmbedding(r.Embedding)
	}
	return s.repo.UpsertBatch(rows)
}

func (s *Store) Query(_ context.Context, name string, embedding []float32, k int) ([]vectorstore.Result, error) {
	rows, err := s.repo.ListByCollection(name)
	if err != nil {
		return nil, err
	}
	if k <= 0 || len(rows) == 0 {
		return nil, nil
	}

	results := make([]vectorstore.Result, len(rows))
	for i := range rows {
		results[i] = vectorstore.Result{
			ID:      rows[i].ChunkID,
			Content: rows[i].Content,
			Metadata: model.ChunkMetadata{
				Filename:   rows[i].Filename,
				ChunkIndex: rows[i].ChunkIndex,
				ChunkSize:  rows[i].ChunkSize,
			},
			Distance: s.distance(embedding, rows[i].EmbeddingVector()),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (s *Store) DeleteByFilename(_ context.Context, name, filename string) error {
	return s.repo.DeleteByFilename(name, filename)
}

// Describe reports the collection's row count and dimension. Rows are the
// only collection state in this driver, so an empty collection and a missing
// one are indistinguishable; lookups never fail with not-found here.
func (s *Store) Describe(_ context.Context, name string) (vectorstore.CollectionInfo, error) {
	rows, err := s.repo.ListByCollection(name)
	if err != nil {
		return vectorstore.CollectionInfo{}, err
	}
	info := vectorstore.CollectionInfo{Records: len(rows)}
	if len(rows) > 0 {
		info.Dimension = len(rows[0].EmbeddingVector())
	}
	return info, nil
}
