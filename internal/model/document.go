package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Document is a named unit of raw text held in the library. Content is kept
// in memory so the collection can be rebuilt after a removal.
type Document struct {
	Filename  string    `json:"filename"`
	Content   string    `json:"-"`
	WordCount int       `json:"word_count"`
	ByteSize  int       `json:"byte_size"`
	AddedAt   time.Time `json:"added_at"`
}

// NewDocument derives word count and byte size from the converted text.
func NewDocument(filename, content string) Document {
	return Document{
		Filename:  filename,
		Content:   content,
		WordCount: len(strings.Fields(content)),
		ByteSize:  len(content),
		AddedAt:   time.Now(),
	}
}

// Extension returns the lowercased file extension including the dot.
func (d Document) Extension() string {
	return strings.ToLower(filepath.Ext(d.Filename))
}

// LibraryStats summarizes the current library contents.
type LibraryStats struct {
	DocumentCount int            `json:"document_count"`
	ChunkCount    int            `json:"chunk_count"`
	TotalWords    int            `json:"total_words"`
	AverageWords  int            `json:"average_words"`
	FileTypes     map[string]int `json:"file_types"`
}
