package ai

import (
	"context"
	"fmt"

	"policy-chatbot/internal/config"
	"policy-chatbot/internal/vectorstore"
	"policy-chatbot/services"
)

// Components is the immutable bundle of AI collaborators built once at
// startup and injected into the HTTP layer. There is no partial or
// degraded construction: any failure aborts startup.
type Components struct {
	LLM       *GeminiClient
	Embedder  *GeminiEmbedder
	Store     *vectorstore.SupabaseStore
	Retriever *services.Retriever
	Memory    *services.ConversationMemory
}

// BuildComponents constructs, in order: the chat model client, the
// embedder, the vector-store client bound to its table and similarity
// function, the top-k retriever, and an empty conversation memory.
func BuildComponents(ctx context.Context, cfg *config.Config) (*Components, error) {
	llm, err := NewGeminiClient(ctx, cfg.GoogleAPIKey, cfg.GenerativeModel, cfg.LLMMaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	embedder, err := NewGeminiEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
	if err != nil {
		llm.Close()
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	store := vectorstore.NewSupabaseStore(
		cfg.SupabaseURL,
		cfg.SupabaseServiceRoleKey,
		cfg.DocumentsTable,
		cfg.MatchFunction,
		cfg.VectorDimensions,
	)

	return &Components{
		LLM:       llm,
		Embedder:  embedder,
		Store:     store,
		Retriever: services.NewRetriever(embedder, store, cfg.RetrievalTopK),
		Memory:    services.NewConversationMemory(),
	}, nil
}

// Close releases the underlying API clients.
func (c *Components) Close() {
	if c.LLM != nil {
		c.LLM.Close()
	}
	if c.Embedder != nil {
		c.Embedder.Close()
	}
}
