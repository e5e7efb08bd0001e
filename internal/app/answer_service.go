package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"holistica/internal/model"
	"holistica/internal/vectorstore"
)

const (
	defaultTopK              = 3
	defaultDistanceThreshold = 1.5

	// RefusalAnswer is the fixed out-of-scope response. Returning it costs
	// no generative-model call and cannot hallucinate.
	RefusalAnswer = "I don't have information about that topic in my library."
	// RefusalSource is the sentinel source for a refused question.
	RefusalSource = "No source"
)

// Embedder converts text into a fixed-length vector. The same instance must
// serve ingestion and querying.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AnswerService runs the online path: embed the question, retrieve the
// nearest chunks, gate on relevance, and synthesize a grounded answer.
type AnswerService struct {
	store      vectorstore.Store
	embedder   Embedder
	generator  TextGenerator
	collection string
	topK       int
	threshold  float64
	logger     *zap.Logger
}

// AskResult is the terminal state of one question.
type AskResult struct {
	Answer  string `json:"answer"`
	Source  string `json:"source"`
	Refused bool   `json:"refused"`
}

func NewAnswerService(
	store vectorstore.Store,
	embedder Embedder,
	generator TextGenerator,
	collection string,
	topK int,
	threshold float64,
	logger *zap.Logger,
) *AnswerService {
	if topK <= 0 {
		topK = defaultTopK
	}
	if threshold <= 0 {
		threshold = defaultDistanceThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnswerService{
		store:      store,
		embedder:   embedder,
		generator:  generator,
		collection: collection,
		topK:       topK,
		threshold:  threshold,
		logger:     logger,
	}
}

// Ask answers a question from the ingested library. A question the library
// cannot ground is refused, which is a normal outcome, not an error: the
// generative model is never invoked for it.
//
// The gate admits the whole top-k result set once the single best distance
// clears the threshold; individually distant chunks are left for the
// generator's instructions to ignore.
func (s *AnswerService) Ask(ctx context.Context, question string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrInvalidInput
	}

	queryEmb, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	results, err := s.store.Query(ctx, s.collection, queryEmb, s.topK)
	if err != nil {
		return nil, fmt.Errorf("query index failed: %w", err)
	}

	if len(results) == 0 || results[0].Distance > s.threshold {
		s.logger.Info("question refused",
			zap.Int("results", len(results)),
			zap.Float64("threshold", s.threshold),
		)
		return &AskResult{Answer: RefusalAnswer, Source: RefusalSource, Refused: true}, nil
	}

	prompt := buildPrompt(question, results)
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}

	return &AskResult{
		Answer: strings.TrimSpace(answer),
		Source: model.SourceFromChunkID(results[0].ID),
	}, nil
}

// buildPrompt lays out the retrieved chunks in retrieval order, most similar
// first, then pins the model to that context.
func buildPrompt(question string, results []vectorstore.Result) string {
	var ctxBlock strings.Builder
	for i, r := range results {
		if i > 0 {
			ctxBlock.WriteString("\n\n")
		}
		fmt.Fprintf(&ctxBlock, "Document %d: %s", i+1, r.Content)
	}

	return fmt.Sprintf(`Context information:
%s

Question: %s

Instructions: Answer ONLY using the information provided above. If the answer is not in the context, respond with "I don't know." Do not add information from outside the context.

Answer:`, ctxBlock.String(), question)
}
