package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// chunkIDSeparator joins a filename and a chunk ordinal into a chunk ID.
// Splitting an ID on it recovers the source filename.
const chunkIDSeparator = "_chunk_"

// ChunkID builds the deterministic identifier for a chunk of a document.
func ChunkID(filename string, index int) string {
	return fmt.Sprintf("%s%s%d", filename, chunkIDSeparator, index)
}

// SourceFromChunkID extracts the filename prefix from a chunk identifier.
// Returns "unknown" if the identifier does not carry the separator.
func SourceFromChunkID(id string) string {
	i := strings.LastIndex(id, chunkIDSeparator)
	if i < 0 {
		return "unknown"
	}
	return id[:i]
}

// ChunkMetadata travels with every embedding record in the vector store.
type ChunkMetadata struct {
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
	ChunkSize  int    `json:"chunk_size"`
}

// ChunkRecord is the MySQL row form of an embedding record, used by the
// mysql vector store driver. Embedding is stored as a JSON array of float32
// for portability.
type ChunkRecord struct {
	ChunkID    string    `gorm:"primaryKey;size:512" json:"chunk_id"`
	Collection string    `gorm:"size:128;not null;index" json:"collection"`
	Filename   string    `gorm:"size:256;not null;index" json:"filename"`
	ChunkIndex int       `gorm:"not null" json:"chunk_index"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Embedding  string    `gorm:"type:text" json:"-"`
	ChunkSize  int       `gorm:"not null" json:"chunk_size"`
	CreatedAt  time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *ChunkRecord) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	_ = json.Unmarshal([]byte(c.Embedding), &v)
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *ChunkRecord) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
