package llm

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/models"
)

// GenaiLLM is the alternate backend on the unified google.golang.org/genai SDK.
type GenaiLLM struct {
	client *genai.Client
}

func NewGenaiLLM(ctx context.Context, apiKey string) (*GenaiLLM, error) {
	if apiKey == "" {
		return nil, scanerr.New(scanerr.KindInvalidCredential, "genai client", "Gemini API key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, classify("genai client", err)
	}
	return &GenaiLLM{client: client}, nil
}

func (g *GenaiLLM) Generate(ctx context.Context, model string, req core.GenerateRequest) (string, error) {
	op := "genai generate " + model

	var cfg *genai.GenerateContentConfig
	if req.SystemPrompt != "" || req.MaxOutputTokens > 0 {
		cfg = &genai.GenerateContentConfig{MaxOutputTokens: req.MaxOutputTokens}
		if req.SystemPrompt != "" {
			cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
		}
	}

	contents := append(genaiHistory(req.History), genai.NewContentFromText(req.Prompt, genai.RoleUser))

	result, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", classify(op, err)
	}
	if result == nil {
		return "", nil
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return "", scanerr.New(scanerr.KindContentPolicy, op, detailContentPolicy)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}
	cand := result.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return "", scanerr.New(scanerr.KindContentPolicy, op, detailContentPolicy)
	}

	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}

func genaiHistory(turns []models.ChatTurn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns)+1)
	for _, t := range turns {
		if t.Role == "model" {
			out = append(out, genai.NewContentFromText(t.Text, genai.RoleModel))
		} else {
			out = append(out, genai.NewContentFromText(t.Text, genai.RoleUser))
		}
	}
	return out
}

var _ core.LLMProvider = (*GenaiLLM)(nil)
