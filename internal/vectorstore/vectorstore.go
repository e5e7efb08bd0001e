package vectorstore

import (
	"context"
	"errors"

	"holistica/internal/model"
)

// Distance metrics. The metric is fixed for the lifetime of a store;
// relevance thresholds are calibrated against it and must be re-tuned if
// the metric or the embedding model changes.
const (
	MetricSquaredL2 = "l2"
	MetricCosine    = "cosine"
)

var (
	// ErrCollectionNotFound is returned when querying or inserting into a
	// collection name that does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrDimensionMismatch is returned when an embedding's length does not
	// match the collection's established dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Record is one embedding entry in a collection. Inserting an ID that
// already exists overwrites the previous record (upsert semantics).
type Record struct {
	ID        string
	Embedding []float32
	Content   string
	Metadata  model.ChunkMetadata
}

// Result is a query hit, distance ascending (most similar first).
type Result struct {
	ID       string
	Content  string
	Metadata model.ChunkMetadata
	Distance float64
}

// CollectionInfo describes an existing collection. Dimension is zero until
// the first record pins it.
type CollectionInfo struct {
	Records   int
	Dimension int
}

// Store is a named set of embedding collections supporting insertion and
// k-nearest-neighbor queries. Implementations must keep reads and writes
// safe under concurrent callers.
type Store interface {
	// CreateCollection makes the named collection available, clearing any
	// previous contents under the same name.
	CreateCollection(ctx context.Context, name string) error
	// DeleteCollection removes the named collection. Deleting a collection
	// that does not exist is a no-op.
	DeleteCollection(ctx context.Context, name string) error
	// Insert upserts records into the collection.
	Insert(ctx context.Context, collection string, records []Record) error
	// Query returns up to k records nearest to the embedding, ascending by
	// distance. An empty collection yields an empty result, not an error.
	Query(ctx context.Context, collection string, embedding []float32, k int) ([]Result, error)
	// DeleteByFilename removes all records whose metadata filename matches,
	// so a re-ingested document never leaves stale chunks behind.
	DeleteByFilename(ctx context.Context, collection, filename string) error
	// Describe looks up the named collection, failing with
	// ErrCollectionNotFound when it does not exist.
	Describe(ctx context.Context, collection string) (CollectionInfo, error)
}

// SquaredL2 is the squared Euclidean distance between two vectors.
func SquaredL2(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// CosineDistance is 1 - cosine similarity, in [0, 2].
func CosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 1
	}
	return 1 - dot/(sqrt(normA)*sqrt(normB))
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	t := x
	for i := 0; i < 32; i++ {
		next := 0.5 * (t + x/t)
		if next == t {
			break
		}
		t = next
	}
	return t
}

// DistanceFunc resolves a metric name; unknown names fall back to squared L2.
func DistanceFunc(metric string) func(a, b []float32) float64 {
	if metric == MetricCosine {
		return CosineDistance
	}
	return SquaredL2
}
