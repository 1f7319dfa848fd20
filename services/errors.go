package services

import "errors"

// Sentinel errors for the stages of both pipelines. Handlers and the
// ingestion CLI branch on these with errors.Is; everything else is
// wrapped detail.
var (
	// ErrLoad: the source document could not be read or parsed.
	ErrLoad = errors.New("document load failed")

	// ErrEmbedding: the embedding provider rejected or failed a call.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStoreWrite: the vector store rejected the batch write.
	ErrStoreWrite = errors.New("vector store write failed")

	// ErrMissingQuestion: the request carried no question text.
	// Recoverable; translates to a 400 at the HTTP boundary.
	ErrMissingQuestion = errors.New("question is required")

	// ErrGeneration: retrieval or the chat model failed while answering.
	// Recoverable at the request level; translates to a 500.
	ErrGeneration = errors.New("answer generation failed")
)
