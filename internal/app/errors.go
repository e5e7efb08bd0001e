package app

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotFound = errors.New("document not found")
	// ErrEmbeddingFailed wraps failures of the embedding gateway so callers
	// can tell them apart from index errors.
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrSynthesisFailed wraps generative-model failures. It is distinct
	// from a refusal: a refusal is a normal answer outcome, a synthesis
	// failure is not.
	ErrSynthesisFailed = errors.New("answer synthesis failed")
)
