package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"holistica/internal/chunker"
	"holistica/internal/model"
	"holistica/internal/pkg/convert"
	"holistica/internal/vectorstore"
)

// Embedding APIs commonly cap batch sizes, so chunks are embedded in groups.
const embeddingBatchSize = 10

// LibraryService runs the offline path: convert, chunk, embed, and index
// documents, and owns the document registry. All mutations go through its
// mutex so ingestion never interleaves with removal or reset.
type LibraryService struct {
	mu         sync.Mutex
	store      vectorstore.Store
	embedder   Embedder
	splitter   *chunker.Chunker
	collection string
	docs       map[string]model.Document
	logger     *zap.Logger
}

func NewLibraryService(
	store vectorstore.Store,
	embedder Embedder,
	splitter *chunker.Chunker,
	collection string,
	logger *zap.Logger,
) *LibraryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LibraryService{
		store:      store,
		embedder:   embedder,
		splitter:   splitter,
		collection: collection,
		docs:       make(map[string]model.Document),
		logger:     logger,
	}
}

// Init creates the working collection. Called once at startup.
func (s *LibraryService) Init(ctx context.Context) error {
	if err := s.store.CreateCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("create collection failed: %w", err)
	}
	return nil
}

// IngestDocument chunks, embeds, and indexes one document's text, returning
// the number of chunks stored. Re-ingesting an existing filename replaces
// its chunks instead of accumulating stale ones. A document is committed
// all-or-nothing: every chunk is embedded before anything is inserted.
func (s *LibraryService) IngestDocument(ctx context.Context, filename, text string) (int, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || strings.TrimSpace(text) == "" {
		return 0, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ingestLocked(ctx, filename, text)
}

func (s *LibraryService) ingestLocked(ctx context.Context, filename, text string) (int, error) {
	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		return 0, ErrInvalidInput
	}

	var embeddings [][]float32
	for i := 0; i < len(chunks); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch, err := s.embedder.EmbedBatch(ctx, chunks[i:end])
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("%w: count mismatch", ErrEmbeddingFailed)
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, c := range chunks {
		records[i] = vectorstore.Record{
			ID:        model.ChunkID(filename, i),
			Embedding: embeddings[i],
			Content:   c,
			Metadata: model.ChunkMetadata{
				Filename:   filename,
				ChunkIndex: i,
				ChunkSize:  len([]rune(c)),
			},
		}
	}

	// Purge any chunks left from an earlier ingest of the same filename
	// before inserting the fresh set.
	if _, exists := s.docs[filename]; exists {
		if err := s.store.DeleteByFilename(ctx, s.collection, filename); err != nil {
			return 0, fmt.Errorf("purge stale chunks failed: %w", err)
		}
	}
	if err := s.store.Insert(ctx, s.collection, records); err != nil {
		return 0, fmt.Errorf("insert chunks failed: %w", err)
	}

	s.docs[filename] = model.NewDocument(filename, text)
	s.logger.Info("document ingested",
		zap.String("filename", filename),
		zap.Int("chunks", len(records)),
	)
	return len(records), nil
}

// FileInput is one uploaded file awaiting conversion.
type FileInput struct {
	Name string
	Data []byte
}

// FileResult reports one converted-and-ingested file.
type FileResult struct {
	Filename   string `json:"filename"`
	WordCount  int    `json:"word_count"`
	ChunkCount int    `json:"chunk_count"`
}

// FileError reports one file that failed conversion or ingestion. Err keeps
// the original error so callers can classify the failure.
type FileError struct {
	Filename string
	Err      error
}

// BatchResult collects per-file outcomes of a batch upload. A failing file
// never aborts the rest of the batch.
type BatchResult struct {
	Ingested []FileResult
	Failed   []FileError
}

// IngestFiles converts and ingests a batch of uploaded files, collecting
// conversion and ingestion errors alongside the successes.
func (s *LibraryService) IngestFiles(ctx context.Context, files []FileInput) BatchResult {
	var result BatchResult
	for _, f := range files {
		text, err := convert.ToText(f.Name, f.Data)
		if err != nil {
			result.Failed = append(result.Failed, FileError{Filename: f.Name, Err: err})
			continue
		}
		count, err := s.IngestDocument(ctx, f.Name, text)
		if err != nil {
			result.Failed = append(result.Failed, FileError{Filename: f.Name, Err: err})
			continue
		}
		result.Ingested = append(result.Ingested, FileResult{
			Filename:   f.Name,
			WordCount:  len(strings.Fields(text)),
			ChunkCount: count,
		})
	}
	return result
}

// ListDocuments returns the registry snapshot, sorted by filename.
func (s *LibraryService) ListDocuments() []model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]model.Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Filename < docs[j].Filename })
	return docs
}

// RemoveDocument drops a document and rebuilds the collection from the
// remaining ones, keeping collection membership equal to the union of the
// registry's chunks.
func (s *LibraryService) RemoveDocument(ctx context.Context, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[filename]; !ok {
		return ErrDocumentNotFound
	}
	delete(s.docs, filename)

	if err := s.store.CreateCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("reset collection failed: %w", err)
	}
	remaining := make([]model.Document, 0, len(s.docs))
	for _, d := range s.docs {
		remaining = append(remaining, d)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Filename < remaining[j].Filename })

	// Registry entries must match what got re-indexed, so a re-ingest
	// failure here rolls the document out of the registry too.
	for _, d := range remaining {
		if _, err := s.ingestLocked(ctx, d.Filename, d.Content); err != nil {
			delete(s.docs, d.Filename)
			s.logger.Error("rebuild lost document",
				zap.String("filename", d.Filename),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("document removed", zap.String("filename", filename))
	return nil
}

// ResetLibrary clears the registry and recreates the collection.
func (s *LibraryService) ResetLibrary(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = make(map[string]model.Document)
	if err := s.store.CreateCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("reset collection failed: %w", err)
	}
	s.logger.Info("library reset")
	return nil
}

// Stats summarizes the library: document and chunk counts, word totals, and
// file-type distribution.
func (s *LibraryService) Stats(ctx context.Context) model.LibraryStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.LibraryStats{FileTypes: make(map[string]int)}
	for _, d := range s.docs {
		stats.DocumentCount++
		stats.TotalWords += d.WordCount
		stats.FileTypes[d.Extension()]++
	}
	if stats.DocumentCount > 0 {
		stats.AverageWords = stats.TotalWords / stats.DocumentCount
	}
	if info, err := s.store.Describe(ctx, s.collection); err == nil {
		stats.ChunkCount = info.Records
	} else {
		s.logger.Warn("describe collection failed", zap.Error(err))
	}
	return stats
}
