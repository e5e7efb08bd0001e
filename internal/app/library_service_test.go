package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"holistica/internal/chunker"
	"holistica/internal/pkg/convert"
	"holistica/internal/vectorstore"
)

func newLibrary(t *testing.T) (*LibraryService, vectorstore.Store) {
	t.Helper()
	store := newTestStore(t)
	lib := NewLibraryService(store, &fakeEmbedder{}, chunker.New(700, 100), "documents", nil)
	return lib, store
}

func chunkCount(t *testing.T, store vectorstore.Store) int {
	t.Helper()
	info, err := store.Describe(context.Background(), "documents")
	require.NoError(t, err)
	return info.Records
}

func TestIngestDocument_StoresChunks(t *testing.T) {
	ctx := context.Background()
	lib, store := newLibrary(t)

	text := strings.Repeat("Wellness begins with small daily habits. ", 40)
	count, err := lib.IngestDocument(ctx, "habits.txt", text)

	require.NoError(t, err)
	require.Greater(t, count, 1)
	require.Equal(t, count, chunkCount(t, store))

	docs := lib.ListDocuments()
	require.Len(t, docs, 1)
	require.Equal(t, "habits.txt", docs[0].Filename)
	require.Equal(t, len(strings.Fields(text)), docs[0].WordCount)
}

func TestIngestDocument_ReingestionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	lib, store := newLibrary(t)
	text := strings.Repeat("Sleep restores both body and mind. ", 50)

	first, err := lib.IngestDocument(ctx, "sleep.txt", text)
	require.NoError(t, err)
	second, err := lib.IngestDocument(ctx, "sleep.txt", text)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, first, chunkCount(t, store), "re-ingestion must not accumulate chunks")
	require.Len(t, lib.ListDocuments(), 1)
}

func TestIngestDocument_ReplacesEditedDocument(t *testing.T) {
	ctx := context.Background()
	lib, store := newLibrary(t)

	_, err := lib.IngestDocument(ctx, "notes.txt", strings.Repeat("original text body here. ", 60))
	require.NoError(t, err)

	count, err := lib.IngestDocument(ctx, "notes.txt", "A much shorter revision.")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, 1, chunkCount(t, store), "stale chunks must be purged on re-ingest")
}

func TestIngestDocument_EmbeddingFailureCommitsNothing(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	lib := NewLibraryService(store, &fakeEmbedder{fail: true}, chunker.New(700, 100), "documents", nil)

	_, err := lib.IngestDocument(ctx, "broken.txt", "some text to ingest here")
	require.ErrorIs(t, err, ErrEmbeddingFailed)
	require.Zero(t, chunkCount(t, store))
	require.Empty(t, lib.ListDocuments())
}

func TestIngestDocument_ChunkSizeCountsRunes(t *testing.T) {
	ctx := context.Background()
	lib, store := newLibrary(t)

	// Multi-byte text: the stored chunk size must match the chunker's rune
	// accounting, not the byte length.
	text := strings.Repeat("café au lait, purée et énergie. ", 3)
	_, err := lib.IngestDocument(ctx, "menu.txt", text)
	require.NoError(t, err)

	results, err := store.Query(ctx, "documents", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, len([]rune(results[0].Content)), results[0].Metadata.ChunkSize)
	require.Less(t, results[0].Metadata.ChunkSize, len(results[0].Content))
}

func TestIngestDocument_InvalidInput(t *testing.T) {
	lib, _ := newLibrary(t)
	ctx := context.Background()

	_, err := lib.IngestDocument(ctx, "", "text")
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = lib.IngestDocument(ctx, "a.txt", "   ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestIngestFiles_CollectsErrorsWithoutAborting(t *testing.T) {
	ctx := context.Background()
	lib, _ := newLibrary(t)

	result := lib.IngestFiles(ctx, []FileInput{
		{Name: "good.txt", Data: []byte("Protein is essential for muscle repair after training.")},
		{Name: "tiny.txt", Data: []byte("x")},
		{Name: "weird.xyz", Data: []byte("whatever content this holds")},
	})

	require.Len(t, result.Ingested, 1)
	require.Equal(t, "good.txt", result.Ingested[0].Filename)
	require.Len(t, result.Failed, 2)
	require.Equal(t, "tiny.txt", result.Failed[0].Filename)
	require.ErrorIs(t, result.Failed[0].Err, convert.ErrEmptyContent)
	require.Equal(t, "weird.xyz", result.Failed[1].Filename)
	require.ErrorIs(t, result.Failed[1].Err, convert.ErrUnsupportedFormat)
	require.Len(t, lib.ListDocuments(), 1)
}

func TestRemoveDocument_RebuildsCollection(t *testing.T) {
	ctx := context.Background()
	lib, store := newLibrary(t)

	keepCount, err := lib.IngestDocument(ctx, "keep.txt", strings.Repeat("keep this document around. ", 60))
	require.NoError(t, err)
	_, err = lib.IngestDocument(ctx, "drop.txt", strings.Repeat("drop this document later. ", 60))
	require.NoError(t, err)

	require.NoError(t, lib.RemoveDocument(ctx, "drop.txt"))

	docs := lib.ListDocuments()
	require.Len(t, docs, 1)
	require.Equal(t, "keep.txt", docs[0].Filename)
	require.Equal(t, keepCount, chunkCount(t, store), "collection must hold exactly the surviving document's chunks")
}

func TestRemoveDocument_NotFound(t *testing.T) {
	lib, _ := newLibrary(t)
	err := lib.RemoveDocument(context.Background(), "ghost.txt")
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestResetLibrary(t *testing.T) {
	ctx := context.Background()
	lib, store := newLibrary(t)

	_, err := lib.IngestDocument(ctx, "a.txt", "Carbohydrates provide energy for exercise and recovery.")
	require.NoError(t, err)

	require.NoError(t, lib.ResetLibrary(ctx))
	require.Empty(t, lib.ListDocuments())
	require.Zero(t, chunkCount(t, store))
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	lib, _ := newLibrary(t)

	_, err := lib.IngestDocument(ctx, "one.txt", "four words right here")
	require.NoError(t, err)
	_, err = lib.IngestDocument(ctx, "two.txt", "six more words live right here")
	require.NoError(t, err)
	_, err = lib.IngestDocument(ctx, "deck.pdf", "ten words of converted slide content fill this tiny line")
	require.NoError(t, err)

	stats := lib.Stats(ctx)
	require.Equal(t, 3, stats.DocumentCount)
	require.Equal(t, 3, stats.ChunkCount)
	require.Equal(t, 20, stats.TotalWords)
	require.Equal(t, 6, stats.AverageWords)
	require.Equal(t, map[string]int{".txt": 2, ".pdf": 1}, stats.FileTypes)
}
