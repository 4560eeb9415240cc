package rag

import (
	"context"
	"errors"

	"ragchat/internal/models"
)

// Error kinds for the two external calls a turn can fail on. Wrapped into
// the returned error so callers can classify with errors.Is.
var (
	ErrRetrieval  = errors.New("retrieval failed")
	ErrGeneration = errors.New("generation failed")
)

// Retriever finds reference documents for a query, most relevant first,
// at most k results.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]models.ReferenceDoc, error)
}

// Generator produces candidate completions for a prompt. The orchestrator
// consumes only the first candidate.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) ([]string, error)
}

// PromptInput carries everything the assembler folds into the template pair.
type PromptInput struct {
	Question    string
	References  []models.ReferenceDoc
	ChatHistory string
}

// PromptAssembler renders the system/user template pair into one prompt
// string. Formatting of the references into text is its concern.
type PromptAssembler interface {
	Render(ctx context.Context, in PromptInput) (string, error)
}
