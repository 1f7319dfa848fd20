package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"policy-chatbot/internal/ai"
	"policy-chatbot/internal/config"
	"policy-chatbot/internal/logger"
	"policy-chatbot/internal/vectorstore"
	"policy-chatbot/services"
)

// Ingestion CLI: loads the policy document, chunks it, embeds the
// chunks, and writes them to the Supabase documents table. Run once per
// policy update. Without -clear, rows are appended to whatever the
// table already holds.
func main() {
	clear := flag.Bool("clear", false, "delete existing rows before ingesting")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg.GinMode == "debug")

	path := cfg.DocumentPath
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	ctx := context.Background()

	embedder, err := ai.NewGeminiEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Fatal("Failed to create embedder:", err)
	}
	defer embedder.Close()

	store := vectorstore.NewSupabaseStore(
		cfg.SupabaseURL,
		cfg.SupabaseServiceRoleKey,
		cfg.DocumentsTable,
		cfg.MatchFunction,
		cfg.VectorDimensions,
	)

	pipeline := services.NewIngestionPipeline(
		services.NewPolicyLoader(),
		services.NewChunkingService(cfg.MaxChunkSize, cfg.ChunkOverlap),
		embedder,
		store,
	)

	rows, err := pipeline.Run(ctx, path, *clear)
	if err != nil {
		if errors.Is(err, vectorstore.ErrDimensionMismatch) {
			// Schema problem: retrying will not help.
			log.Fatalf("Ingestion aborted, table schema does not match the embedding model: %v", err)
		}
		log.Fatalf("Ingestion failed: %v", err)
	}

	log.Printf("Ingested %d rows from %s", rows, path)
}
