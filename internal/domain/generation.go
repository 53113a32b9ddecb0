package domain

import "context"

// Generator is the text-completion contract of the hosted generation service.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (Completion, error)
}

// GenerationRequest is a single user-role prompt with output limits.
type GenerationRequest struct {
	Model     string
	MaxTokens int
	Prompt    string
}

// Completion is the generated text and the tokens it consumed.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
