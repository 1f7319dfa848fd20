package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"policy-chatbot/models"
	"policy-chatbot/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetriever struct {
	results []models.MatchResult
	err     error
}

func (s *stubRetriever) Search(ctx context.Context, question string) ([]models.MatchResult, error) {
	return s.results, s.err
}

type stubLLM struct {
	mu         sync.Mutex
	calls      int
	err        error
	lastPrompt string
}

func (s *stubLLM) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return "you have 30 days to return it", nil
}

func newTestRouter(retriever *stubRetriever, llm *stubLLM) (*gin.Engine, *services.ConversationMemory) {
	gin.SetMode(gin.TestMode)
	memory := services.NewConversationMemory()
	pipeline := services.NewAnswerPipeline(retriever, memory, llm)
	router := gin.New()
	SetupQueryRoutes(router, pipeline)
	return router, memory
}

func postQuery(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthRoute(t *testing.T) {
	router, _ := newTestRouter(&stubRetriever{}, &stubLLM{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
}

func TestQueryWithoutQuestionIs400(t *testing.T) {
	llm := &stubLLM{}
	router, memory := newTestRouter(&stubRetriever{}, llm)

	w := postQuery(router, `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
	// Rejection never reaches the model or memory.
	assert.Zero(t, llm.calls)
	assert.Zero(t, memory.TurnCount(services.DefaultSession))
}

func TestQueryWithMalformedBodyIs400(t *testing.T) {
	router, _ := newTestRouter(&stubRetriever{}, &stubLLM{})
	w := postQuery(router, `{"question": 42`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryReturnsAnswerAndRecordsTurn(t *testing.T) {
	retriever := &stubRetriever{results: []models.MatchResult{{Content: "30 day return window"}}}
	router, memory := newTestRouter(retriever, &stubLLM{})

	w := postQuery(router, `{"question": "How long do I have?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "you have 30 days to return it", body.Answer)
	assert.Equal(t, 1, memory.TurnCount(services.DefaultSession))
}

func TestSecondQuerySeesFirstTurn(t *testing.T) {
	llm := &stubLLM{}
	retriever := &stubRetriever{results: []models.MatchResult{{Content: "policy text"}}}
	router, _ := newTestRouter(retriever, llm)

	require.Equal(t, http.StatusOK, postQuery(router, `{"question": "first question"}`).Code)
	require.Equal(t, http.StatusOK, postQuery(router, `{"question": "second question"}`).Code)

	assert.Contains(t, llm.lastPrompt, "first question")
	assert.Contains(t, llm.lastPrompt, "you have 30 days to return it")
}

func TestQueryPipelineFailureIs500(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("vector store down")}
	router, _ := newTestRouter(retriever, &stubLLM{})

	w := postQuery(router, `{"question": "anything"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

// Concurrent queries against the shared default conversation may
// interleave, but every completed request must leave exactly one turn.
func TestConcurrentQueriesDropNoTurns(t *testing.T) {
	const callers = 8
	retriever := &stubRetriever{results: []models.MatchResult{{Content: "policy text"}}}
	router, memory := newTestRouter(retriever, &stubLLM{})

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := postQuery(router, `{"question": "is this returnable?"}`)
			assert.Equal(t, http.StatusOK, w.Code)
		}()
	}
	wg.Wait()

	assert.Equal(t, callers, memory.TurnCount(services.DefaultSession))
}
