package services

import (
	"context"
	"errors"
	"fmt"

	"policy-chatbot/internal/logger"
	"policy-chatbot/models"
)

// DocumentLoader reads a source document into page-level text records.
type DocumentLoader interface {
	Load(path string) ([]models.Page, error)
}

// VectorWriter persists document rows and supports clearing the table.
type VectorWriter interface {
	InsertRows(ctx context.Context, rows []models.DocumentRow) error
	DeleteAll(ctx context.Context) error
}

// IngestionPipeline loads a policy document, chunks it, embeds every
// chunk, and writes all rows to the vector store in one batch.
//
// Known limitation: a batch failure aborts the run and may leave the
// table partially populated. Rows are appended, never replaced, so
// re-running without clear=true duplicates earlier rows.
type IngestionPipeline struct {
	loader  DocumentLoader
	chunker *ChunkingService
	embed   Embedder
	writer  VectorWriter
}

func NewIngestionPipeline(loader DocumentLoader, chunker *ChunkingService, embed Embedder, writer VectorWriter) *IngestionPipeline {
	return &IngestionPipeline{
		loader:  loader,
		chunker: chunker,
		embed:   embed,
		writer:  writer,
	}
}

// Run ingests the document at path and returns the number of rows
// written. With clear set, existing rows are deleted first.
func (p *IngestionPipeline) Run(ctx context.Context, path string, clear bool) (int, error) {
	pages, err := p.loader.Load(path)
	if err != nil {
		if errors.Is(err, ErrLoad) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	logger.Info("document loaded", "path", path, "pages", len(pages))

	chunks := p.chunker.ChunkPages(pages)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: document produced no chunks", ErrLoad)
	}
	logger.Info("document chunked", "chunks", len(chunks))

	rows := make([]models.DocumentRow, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := p.embed.Embed(ctx, chunk.Text)
		if err != nil {
			return 0, fmt.Errorf("%w: chunk %d (page %d): %v", ErrEmbedding, chunk.Order, chunk.Page, err)
		}
		rows = append(rows, models.DocumentRow{
			Content:   chunk.Text,
			Embedding: vector,
			Metadata: map[string]any{
				"chunk_id": chunk.ChunkID,
				"page":     chunk.Page,
				"order":    chunk.Order,
				"source":   path,
			},
		})
	}

	if clear {
		if err := p.writer.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStoreWrite, err)
		}
		logger.Info("cleared existing rows")
	}

	if err := p.writer.InsertRows(ctx, rows); err != nil {
		// Keep the dimension-mismatch marker visible through the wrap so
		// the CLI can tell schema errors from connectivity failures.
		return 0, fmt.Errorf("%w: %w", ErrStoreWrite, err)
	}

	logger.Info("ingestion complete", "rows", len(rows))
	return len(rows), nil
}
