package memory

import (
	"context"
	"sort"
	"sync"

	"holistica/internal/vectorstore"
)

// Store is an in-process vector store using brute-force k-NN over named
// collections. It is the default driver and keeps nothing across restarts.
type Store struct {
	mu          sync.RWMutex
	distance    func(a, b []float32) float64
	collections map[string]*collection
}

type collection struct {
	dimension int
	order     []string // insertion order of IDs, stable query tie-breaking
	records   map[string]vectorstore.Record
}

func New(metric string) *Store {
	return &Store{
		distance:    vectorstore.DistanceFunc(metric),
		collections: make(map[string]*collection),
	}
}

func (s *Store) CreateCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = &collection{records: make(map[string]vectorstore.Record)}
	return nil
}

func (s *Store) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func (s *Store) Insert(_ context.Context, name string, records []vectorstore.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return vectorstore.ErrCollectionNotFound
	}
	// The first inserted record pins the collection's dimensionality.
	for _, r := range records {
		if col.dimension == 0 {
			col.dimension = len(r.Embedding)
		}
		if len(r.Embedding) != col.dimension {
			return vectorstore.ErrDimensionMismatch
		}
	}
	for _, r := range records {
		if _, exists := col.records[r.ID]; !exists {
			col.order = append(col.order, r.ID)
		}
		col.records[r.ID] = r
	}
	return nil
}

func (s *Store) Query(_ context.Context, name string, embedding []float32, k int) ([]vectorstore.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return nil, vectorstore.ErrCollectionNotFound
	}
	if k <= 0 || len(col.records) == 0 {
		return nil, nil
	}

	results := make([]vectorstore.Result, 0, len(col.records))
	for _, id := range col.order {
		r := col.records[id]
		results = append(results, vectorstore.Result{
			ID:       r.ID,
			Content:  r.Content,
			Metadata: r.Metadata,
			Distance: s.distance(embedding, r.Embedding),
		})
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
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return vectorstore.ErrCollectionNotFound
	}
	kept := col.order[:0]
	for _, id := range col.order {
		if col.records[id].Metadata.Filename == filename {
			delete(col.records, id)
			continue
		}
		kept = append(kept, id)
	}
	col.order = kept
	return nil
}

func (s *Store) Describe(_ context.Context, name string) (vectorstore.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return vectorstore.CollectionInfo{}, vectorstore.ErrCollectionNotFound
	}
	return vectorstore.CollectionInfo{
		Records:   len(col.records),
		Dimension: col.dimension,
	}, nil
}
