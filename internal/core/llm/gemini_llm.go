package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/models"
)

// GeminiLLM is the default backend, built on generative-ai-go.
type GeminiLLM struct {
	client *genai.Client
}

func NewGeminiLLM(ctx context.Context, apiKey string) (*GeminiLLM, error) {
	if apiKey == "" {
		return nil, scanerr.New(scanerr.KindInvalidCredential, "gemini client", "Gemini API key is not configured")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, classify("gemini client", err)
	}
	return &GeminiLLM{client: cl}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Generate(ctx context.Context, model string, req core.GenerateRequest) (string, error) {
	op := "gemini generate " + model

	m := g.client.GenerativeModel(model)
	if req.SystemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}
	if req.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(req.MaxOutputTokens)
	}

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if len(req.History) > 0 {
		cs := m.StartChat()
		cs.History = legacyHistory(req.History)
		resp, err = cs.SendMessage(ctx, genai.Text(req.Prompt))
	} else {
		resp, err = m.GenerateContent(ctx, genai.Text(req.Prompt))
	}
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", scanerr.Wrap(scanerr.KindContentPolicy, op, detailContentPolicy, err)
		}
		return "", classify(op, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), nil
}

func legacyHistory(turns []models.ChatTurn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		out = append(out, &genai.Content{
			Role:  t.Role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return out
}

var _ core.LLMProvider = (*GeminiLLM)(nil)
