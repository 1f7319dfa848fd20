package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"policy-chatbot/internal/vectorstore"
	"policy-chatbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	pages []models.Page
	err   error
}

func (f *fakeLoader) Load(path string) ([]models.Page, error) {
	return f.pages, f.err
}

type fakeEmbedder struct {
	dim   int
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	v := make([]float32, f.dim)
	for i := range v {
		v[i] = float32(len(text)%10) / 10
	}
	return v, nil
}

type fakeWriter struct {
	rows      []models.DocumentRow
	insertErr error
}

func (f *fakeWriter) InsertRows(ctx context.Context, rows []models.DocumentRow) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeWriter) DeleteAll(ctx context.Context) error {
	f.rows = nil
	return nil
}

func newTestPipeline(loader *fakeLoader, embedder *fakeEmbedder, writer *fakeWriter) *IngestionPipeline {
	return NewIngestionPipeline(loader, NewChunkingService(50, 10), embedder, writer)
}

func testPages() []models.Page {
	return []models.Page{
		{Number: 1, Text: strings.Repeat("return policy page one. ", 8)},
		{Number: 2, Text: "final remarks"},
	}
}

func TestIngestionWritesOneRowPerChunk(t *testing.T) {
	loader := &fakeLoader{pages: testPages()}
	embedder := &fakeEmbedder{dim: 8}
	writer := &fakeWriter{}

	rows, err := newTestPipeline(loader, embedder, writer).Run(context.Background(), "policy.pdf", false)
	require.NoError(t, err)
	require.Greater(t, rows, 1)
	assert.Len(t, writer.rows, rows)
	assert.Equal(t, rows, embedder.calls)

	first := writer.rows[0]
	assert.NotEmpty(t, first.Content)
	assert.Len(t, first.Embedding, 8)
	assert.Equal(t, 1, first.Metadata["page"])
	assert.Equal(t, "policy.pdf", first.Metadata["source"])
}

func TestIngestionAppendsOnReRun(t *testing.T) {
	loader := &fakeLoader{pages: testPages()}
	writer := &fakeWriter{}
	p := newTestPipeline(loader, &fakeEmbedder{dim: 8}, writer)

	first, err := p.Run(context.Background(), "policy.pdf", false)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), "policy.pdf", false)
	require.NoError(t, err)

	// Re-ingestion is not idempotent: rows accumulate.
	assert.Len(t, writer.rows, 2*first)
}

func TestIngestionClearResetsTable(t *testing.T) {
	loader := &fakeLoader{pages: testPages()}
	writer := &fakeWriter{}
	p := newTestPipeline(loader, &fakeEmbedder{dim: 8}, writer)

	first, err := p.Run(context.Background(), "policy.pdf", false)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), "policy.pdf", true)
	require.NoError(t, err)

	assert.Len(t, writer.rows, first)
}

func TestIngestionLoadFailureAborts(t *testing.T) {
	loader := &fakeLoader{err: fmt.Errorf("%w: no such file", ErrLoad)}
	writer := &fakeWriter{}

	_, err := newTestPipeline(loader, &fakeEmbedder{dim: 8}, writer).Run(context.Background(), "missing.pdf", false)
	require.ErrorIs(t, err, ErrLoad)
	assert.Empty(t, writer.rows)
}

func TestIngestionEmbeddingFailureAborts(t *testing.T) {
	loader := &fakeLoader{pages: testPages()}
	embedder := &fakeEmbedder{err: errors.New("invalid api key")}
	writer := &fakeWriter{}

	_, err := newTestPipeline(loader, embedder, writer).Run(context.Background(), "policy.pdf", false)
	require.ErrorIs(t, err, ErrEmbedding)
	assert.Empty(t, writer.rows)
}

func TestIngestionDimensionMismatchIsDistinguishable(t *testing.T) {
	loader := &fakeLoader{pages: testPages()}
	writer := &fakeWriter{insertErr: fmt.Errorf("%w: vector has 8 dimensions, table column expects 768", vectorstore.ErrDimensionMismatch)}

	_, err := newTestPipeline(loader, &fakeEmbedder{dim: 8}, writer).Run(context.Background(), "policy.pdf", false)
	require.ErrorIs(t, err, ErrStoreWrite)
	require.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "dimension")
}
