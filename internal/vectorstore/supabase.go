package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"policy-chatbot/models"
)

// ErrDimensionMismatch marks a vector whose width differs from the
// documents table column width. This is a schema problem, not a
// transient failure: callers must not retry, the table (or VECTOR_DIM)
// has to be corrected by an operator.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// SupabaseStore talks to the Supabase PostgREST API: plain inserts into
// the documents table and similarity search through the match_documents
// SQL function.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	table      string
	matchFn    string
	dimensions int
	httpClient *http.Client
}

func NewSupabaseStore(baseURL, serviceKey, table, matchFn string, dimensions int) *SupabaseStore {
	return &SupabaseStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		table:      table,
		matchFn:    matchFn,
		dimensions: dimensions,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// InsertRows writes all rows in one logical batch. Rows are appended:
// re-ingesting the same document duplicates them unless DeleteAll is
// called first.
func (s *SupabaseStore) InsertRows(ctx context.Context, rows []models.DocumentRow) error {
	if len(rows) == 0 {
		return nil
	}
	for i, row := range rows {
		if err := s.checkDimensions(len(row.Embedding)); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}

	url := fmt.Sprintf("%s/rest/v1/%s", s.baseURL, s.table)
	body, status, err := s.doRequest(ctx, http.MethodPost, url, rows, "return=minimal")
	if err != nil {
		return fmt.Errorf("insert into %s failed: %w", s.table, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("insert into %s failed: %w", s.table, s.apiError(status, body))
	}
	return nil
}

// MatchDocuments returns the limit most similar rows for the query
// embedding, most similar first.
func (s *SupabaseStore) MatchDocuments(ctx context.Context, embedding []float32, limit int) ([]models.MatchResult, error) {
	if err := s.checkDimensions(len(embedding)); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"query_embedding": embedding,
		"match_count":     limit,
	}

	url := fmt.Sprintf("%s/rest/v1/rpc/%s", s.baseURL, s.matchFn)
	body, status, err := s.doRequest(ctx, http.MethodPost, url, payload, "")
	if err != nil {
		return nil, fmt.Errorf("%s rpc failed: %w", s.matchFn, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%s rpc failed: %w", s.matchFn, s.apiError(status, body))
	}

	var results []models.MatchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %v", s.matchFn, err)
	}
	return results, nil
}

// DeleteAll clears the documents table. Used by the ingestion CLI when
// re-ingesting a policy update from scratch.
func (s *SupabaseStore) DeleteAll(ctx context.Context) error {
	// PostgREST refuses unfiltered deletes; id=not.is.null matches every row.
	url := fmt.Sprintf("%s/rest/v1/%s?id=not.is.null", s.baseURL, s.table)
	body, status, err := s.doRequest(ctx, http.MethodDelete, url, nil, "return=minimal")
	if err != nil {
		return fmt.Errorf("clearing %s failed: %w", s.table, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("clearing %s failed: %w", s.table, s.apiError(status, body))
	}
	return nil
}

// Dimensions reports the declared vector column width.
func (s *SupabaseStore) Dimensions() int {
	return s.dimensions
}

func (s *SupabaseStore) checkDimensions(got int) error {
	if s.dimensions > 0 && got != s.dimensions {
		return fmt.Errorf("%w: vector has %d dimensions, table column expects %d - correct VECTOR_DIM or the table schema", ErrDimensionMismatch, got, s.dimensions)
	}
	return nil
}

func (s *SupabaseStore) doRequest(ctx context.Context, method, url string, payload any, prefer string) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %v", err)
	}

	return body, resp.StatusCode, nil
}

// apiError converts a PostgREST failure body into an error, surfacing
// pgvector dimension complaints ("expected N dimensions, not M") as
// ErrDimensionMismatch so callers can tell schema errors from outages.
func (s *SupabaseStore) apiError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	if strings.Contains(strings.ToLower(msg), "dimension") {
		return fmt.Errorf("%w: %s", ErrDimensionMismatch, msg)
	}
	return fmt.Errorf("status %d: %s", status, msg)
}
