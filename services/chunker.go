package services

import (
	"policy-chatbot/models"

	"github.com/google/uuid"
)

// ChunkingService splits page text into fixed-size windows with a fixed
// overlap between neighbors. Splitting is pure: the same text and
// parameters always produce the same chunks.
type ChunkingService struct {
	maxChunkSize int
	overlap      int
}

// NewChunkingService creates a chunker. overlap must be smaller than
// maxChunkSize; config validation enforces this before construction.
func NewChunkingService(maxChunkSize, overlap int) *ChunkingService {
	return &ChunkingService{
		maxChunkSize: maxChunkSize,
		overlap:      overlap,
	}
}

// Split cuts text into windows of at most maxChunkSize runes where each
// window starts overlap runes before the previous one ended.
func (cs *ChunkingService) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= cs.maxChunkSize {
		return []string{string(runes)}
	}

	step := cs.maxChunkSize - cs.overlap
	var windows []string
	for start := 0; start < len(runes); start += step {
		end := start + cs.maxChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return windows
}

// ChunkPages splits every page and tags each chunk with its source page
// and running order.
func (cs *ChunkingService) ChunkPages(pages []models.Page) []models.Chunk {
	var chunks []models.Chunk
	order := 0
	for _, page := range pages {
		for _, text := range cs.Split(page.Text) {
			chunks = append(chunks, models.Chunk{
				ChunkID: uuid.NewString(),
				Text:    text,
				Page:    page.Number,
				Order:   order,
			})
			order++
		}
	}
	return chunks
}
