package services

import (
	"context"
	"fmt"

	"policy-chatbot/models"
)

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SimilaritySearcher returns the stored rows most similar to a query
// embedding, most similar first.
type SimilaritySearcher interface {
	MatchDocuments(ctx context.Context, embedding []float32, limit int) ([]models.MatchResult, error)
}

// Generator invokes the hosted chat model with a rendered prompt.
type Generator interface {
	GenerateAnswer(ctx context.Context, prompt string) (string, error)
}

// Retriever embeds a question and looks up the top-k most similar
// stored chunks.
type Retriever struct {
	embedder Embedder
	store    SimilaritySearcher
	topK     int
}

func NewRetriever(embedder Embedder, store SimilaritySearcher, topK int) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}
}

func (r *Retriever) Search(ctx context.Context, question string) ([]models.MatchResult, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	results, err := r.store.MatchDocuments(ctx, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return results, nil
}
