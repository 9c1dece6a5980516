package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

const (
	MaxOutputTokens = 1000
	OffTopicReply   = "I am designed to answer legal-related questions only."
)

const legalSystemPrompt = `You are a professional legal assistant specialized in Indian law.
You must only answer questions related to:
- Law
- Legal rights
- Court procedures
- Consumer rights
- Contracts
- Legal documentation
- Criminal law
- Civil law
- Government legal policies

If a user asks anything unrelated to law, respond strictly with:
'` + OffTopicReply + `'

Do not answer non-legal topics under any circumstances.`

type Generator interface {
	Generate(ctx context.Context, req core.GenerateRequest) (text, model string, err error)
}

// Assistant answers legal questions in a conversation. It has its own
// credential and model selector, separate from the scanner's.
type Assistant struct {
	gen    Generator
	hasKey bool
	logger *slog.Logger
}

func NewAssistant(gen Generator, hasKey bool, logger *slog.Logger) *Assistant {
	return &Assistant{gen: gen, hasKey: hasKey, logger: logging.Component(logger, "chat")}
}

func (a *Assistant) Reply(ctx context.Context, message string, history []models.ChatTurn) (string, error) {
	const op = "chat"
	if strings.TrimSpace(message) == "" {
		return "", scanerr.New(scanerr.KindInvalidUpload, op, "Invalid message format")
	}
	if !a.hasKey || a.gen == nil {
		return "", scanerr.New(scanerr.KindInvalidCredential, op, "Gemini API key is not configured")
	}

	text, model, err := a.gen.Generate(ctx, core.GenerateRequest{
		SystemPrompt:    legalSystemPrompt,
		History:         CleanHistory(history),
		Prompt:          message,
		MaxOutputTokens: MaxOutputTokens,
	})
	if err != nil {
		return "", err
	}
	a.logger.Info("chat reply", "model", model, "chars", len(text))
	return text, nil
}

// CleanHistory keeps user and model turns with text and drops leading model
// turns; a conversation sent to the backend has to open with the user.
func CleanHistory(turns []models.ChatTurn) []models.ChatTurn {
	out := make([]models.ChatTurn, 0, len(turns))
	for _, t := range turns {
		if (t.Role != "user" && t.Role != "model") || strings.TrimSpace(t.Text) == "" {
			continue
		}
		if len(out) == 0 && t.Role == "model" {
			continue
		}
		out = append(out, t)
	}
	return out
}
