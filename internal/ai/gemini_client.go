package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"policy-chatbot/internal/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// Free-tier request budget for the Gemini API.
const requestsPerMinute = 10

// GeminiClient wraps the hosted chat-completion model with a circuit
// breaker, a client-side rate limiter, and a bounded retry count for
// transient call failures.
type GeminiClient struct {
	client      *genai.Client
	modelName   string
	maxAttempts int
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string, maxAttempts int) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)*0.9/60.0), 1)

	return &GeminiClient{
		client:      client,
		modelName:   modelName,
		maxAttempts: maxAttempts,
		breaker:     breaker,
		rateLimiter: rateLimiter,
	}, nil
}

// GenerateAnswer renders the prompt through the chat model and returns
// the plain response text.
func (gc *GeminiClient) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	if err := gc.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := gc.breaker.Execute(func() (interface{}, error) {
		model := gc.client.GenerativeModel(gc.modelName)
		// Low temperature: policy answers should stay close to the
		// retrieved text.
		model.SetTemperature(0.2)
		model.SetMaxOutputTokens(1024)

		var lastErr error
		for attempt := 1; attempt <= gc.maxAttempts; attempt++ {
			resp, err := model.GenerateContent(ctx, genai.Text(prompt))
			if err == nil {
				return resp, nil
			}
			lastErr = err
			if attempt < gc.maxAttempts {
				time.Sleep(time.Duration(attempt) * time.Second)
			}
		}
		return nil, fmt.Errorf("failed after %d attempts: %v", gc.maxAttempts, lastErr)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return "", fmt.Errorf("gemini temporarily unavailable: %w", err)
		}
		return "", err
	}

	return extractResponseText(result.(*genai.GenerateContentResponse))
}

// extractResponseText flattens the first candidate's text parts.
func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}

	out := ""
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out += string(text)
			}
		}
		break
	}
	if out == "" {
		return "", errors.New("empty response from model")
	}
	return out, nil
}

// Close the underlying API client.
func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}
