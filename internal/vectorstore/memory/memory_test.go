package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"holistica/internal/model"
	"holistica/internal/vectorstore"
)

func record(id, filename string, index int, embedding ...float32) vectorstore.Record {
	return vectorstore.Record{
		ID:        id,
		Embedding: embedding,
		Content:   "content of " + id,
		Metadata: model.ChunkMetadata{
			Filename:   filename,
			ChunkIndex: index,
			ChunkSize:  len("content of " + id),
		},
	}
}

func TestInsertAndQuery_AscendingByDistance(t *testing.T) {
	ctx := context.Background()
	s := New(vectorstore.MetricSquaredL2)
	require.NoError(t, s.CreateCollection(ctx, "documents"))

	require.NoError(t, s.Insert(ctx, "documents", []vectorstore.Record{
		record("a_chunk_0", "a", 0, 1, 0),
		record("b_chunk_0", "b", 0, 0, 1),
		record("c_chunk_0", "c", 0, 0.9, 0.1),
	}))

	results, err := s.Query(ctx, "documents", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "a_chunk_0", results[0].ID)
	require.Equal(t, "c_chunk_0", results[1].ID)
	require.Equal(t, "b_chunk_0", results[2].ID)
	require.LessOrEqual(t, results[0].Distance, results[1].Distance)
	require.LessOrEqual(t, results[1].Distance, results[2].Distance)
}

func TestQuery_EmptyCollection(t *testing.T) {
	ctx := context.Background()
	s := New(vectorstore.MetricSquaredL2)
	require.NoError(t, s.CreateCollection(ctx, "documents"))

	results, err := s.Query(ctx, "documents", []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestQuery_KBound(t *testing.T) {
	ctx := context.Background()
	s := New(vectorstore.MetricSquaredL2)
	require.NoError(t, s.CreateCollection(ctx, "documents"))
	require.NoError(t, s.Insert(ctx, "documents", []vectorstore.Record{
		record("a_chunk_0", "a", 0, 1, 0),
		record("a_chunk_1", "a", 1, 0, 1),
	}))

	results, err := s.Query(ctx, "documents", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestQuery_MissingCollection(t *testing.T) {
	s := New(vectorstore.MetricSquaredL2)

	_, err := s.Query(context.Background(), "nope", []float32{1}, 3)
	require.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestInsert_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := New(vectorstore.MetricSquaredL2)
	require.NoError(t, s.CreateCollection(ctx, "documents"))

	require.NoError(t, s.Insert(ctx, "documents", []vectorstore.Record{record("a_chunk_0", "a", 0, 1, 0)}))
	updated := record("a_chunk_0", "a", 0, 0, 1)
	updated.Content = "fresh content"
	require.NoError(t, s.Insert(ctx, "documents", []vectorstore.Record{updated}))

	info, err := s.Describe(ctx, "documents")
	require.NoError(t, err)
	require.Equal(t, 1, info.Records)

	results, err := s.Query(ctx, "documents", []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Equal(t, "fresh content", results[0].Content)
}

func TestInsert_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := New(vectorstore.MetricSquaredL2)
	require.NoError(t, s.CreateCollection(ctx, "documents"))
	require.NoError(t, s.Insert(ctx, "documents", []vectorstore.Record{record("a_chunk_0", "a", 0, 1, 0)}))

	err := s.Insert(ctx, "documents", []vectorstore.Record{record("b_chunk_0", "b", 0, 1, 0, 0)})
	require.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
}

func TestDeleteCollection_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := New(vectorstore.MetricSquaredL2)

	require.NoError(t, s.DeleteCollection(ctx, "never-created"))

	require.NoError(t, s.CreateCollection(ctx, "documents"))
	require.NoError(t, s.DeleteCollection(ctx, "documents"))
	require.NoError(t, s.DeleteCollection(ctx, "documents"))

	_, err := s.Describe(ctx, "documents")
	require.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestCreateCollection_ClearsPreviousContents(t *testing.T) {
	ctx := context.Background()
	s := New(vectorstore.MetricSquaredL2)
	require.NoError(t, s.CreateCollection(ctx, "documents"))
	require.NoError(t, s.Insert(ctx, "documents", []vectorstore.Record{record("a_chunk_0", "a", 0, 1)}))

	require.NoError(t, s.CreateCollection(ctx, "documents"))
	info, err := s.Describe(ctx, "documents")
	require.NoError(t, err)
	require.Zero(t, info.Records)
	require.Zero(t, info.Dimension)
}

func TestDeleteByFilename(t *testing.T) {
	ctx := context.Background()
	s := New(vectorstore.MetricSquaredL2)
	require.NoError(t, s.CreateCollection(ctx, "documents"))
	require.NoError(t, s.Insert(ctx, "documents", []vectorstore.Record{
		record("a.txt_chunk_0", "a.txt", 0, 1, 0),
		record("a.txt_chunk_1", "a.txt", 1, 0, 1),
		record("b.txt_chunk_0", "b.txt", 0, 0.5, 0.5),
	}))

	require.NoError(t, s.DeleteByFilename(ctx, "documents", "a.txt"))

	info, err := s.Describe(ctx, "documents")
	require.NoError(t, err)
	require.Equal(t, 1, info.Records)

	results, err := s.Query(ctx, "documents", []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "b.txt_chunk_0", results[0].ID)
}

func TestCosineMetric(t *testing.T) {
	ctx := context.Background()
	s := New(vectorstore.MetricCosine)
	require.NoError(t, s.CreateCollection(ctx, "documents"))
	require.NoError(t, s.Insert(ctx, "documents", []vectorstore.Record{
		record("same_chunk_0", "same", 0, 2, 0), // parallel to the query
		record("orth_chunk_0", "orth", 0, 0, 3), // orthogonal
	}))

	results, err := s.Query(ctx, "documents", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Equal(t, "same_chunk_0", results[0].ID)
	require.InDelta(t, 0.0, results[0].Distance, 1e-6)
	require.InDelta(t, 1.0, results[1].Distance, 1e-6)
}
