package services

import (
	"context"
	"fmt"
	"strings"

	"policy-chatbot/internal/logger"
	"policy-chatbot/models"
)

// FallbackAnswer is the sentence the model is instructed to emit when
// the retrieved context does not contain the answer. This is a
// prompt-level contract; the model is told to use it verbatim.
const FallbackAnswer = "I'm sorry, I don't have that information in our return policy. Please contact support@example.com for further help."

// ContextRetriever is the retrieval capability the pipeline depends on.
type ContextRetriever interface {
	Search(ctx context.Context, question string) ([]models.MatchResult, error)
}

// AnswerPipeline turns a question into a grounded answer: retrieve
// policy chunks, replay the conversation history, render the prompt,
// call the model, and record the new turn.
type AnswerPipeline struct {
	retriever ContextRetriever
	memory    *ConversationMemory
	llm       Generator
}

func NewAnswerPipeline(retriever ContextRetriever, memory *ConversationMemory, llm Generator) *AnswerPipeline {
	return &AnswerPipeline{
		retriever: retriever,
		memory:    memory,
		llm:       llm,
	}
}

// Answer runs the pipeline for one question. An empty question is
// rejected before any provider call. Retrieval uses only the new
// question; history influences generation, not retrieval. The turn is
// appended to memory only after a successful generation.
func (p *AnswerPipeline) Answer(ctx context.Context, sessionID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrMissingQuestion
	}

	results, err := p.retriever.Search(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	history := p.memory.History(sessionID)

	prompt := buildPrompt(results, history, question)

	answer, err := p.llm.GenerateAnswer(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	answer = strings.TrimSpace(answer)

	p.memory.Append(sessionID, question, answer)
	logger.Debug("answered question", "session", sessionID, "context_chunks", len(results), "history_turns", len(history))

	return answer, nil
}

// buildPrompt renders the fixed template: grounding rules, retrieved
// policy context, prior turns, then the new question.
func buildPrompt(results []models.MatchResult, history []models.ConversationTurn, question string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a customer support assistant for our online store. ")
	prompt.WriteString("Answer questions about the return policy using ONLY the context below. ")
	prompt.WriteString("Do not invent policy details.\n\n")

	if len(results) > 0 {
		prompt.WriteString("Return policy context:\n\n")
		for i, result := range results {
			prompt.WriteString(fmt.Sprintf("%d. %s\n\n", i+1, result.Content))
		}
		prompt.WriteString("---\n\n")
	}

	if len(history) > 0 {
		prompt.WriteString("Previous conversation:\n")
		for _, turn := range history {
			prompt.WriteString(fmt.Sprintf("User: %s\n", turn.Question))
			prompt.WriteString(fmt.Sprintf("Assistant: %s\n\n", turn.Answer))
		}
		prompt.WriteString("---\n\n")
	}

	prompt.WriteString("If the answer is not present in the context, reply exactly: \"")
	prompt.WriteString(FallbackAnswer)
	prompt.WriteString("\"\n\n")

	prompt.WriteString(fmt.Sprintf("User question: %s\n", question))

	return prompt.String()
}
