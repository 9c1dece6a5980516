package core

import (
	"context"

	"github.com/markdave123-py/LegalScan/internal/models"
)

// GenerateRequest is a single generation call against a named backend model.
type GenerateRequest struct {
	SystemPrompt    string
	History         []models.ChatTurn
	Prompt          string
	MaxOutputTokens int32
}

// LLMProvider runs generation against a specific model. Implementations
// return errors already classified with scanerr kinds.
type LLMProvider interface {
	Generate(ctx context.Context, model string, req GenerateRequest) (string, error)
}

// ModelCache holds the currently active model for one credential/purpose.
type ModelCache interface {
	Get(ctx context.Context) (string, bool)
	Set(ctx context.Context, model string)
	// Invalidate clears the cache only if it still holds model.
	Invalidate(ctx context.Context, model string)
}

// SpeechSynthesizer turns text into encoded audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (audio []byte, mimeType string, err error)
}
