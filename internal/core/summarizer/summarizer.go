package summarizer

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

const (
	MaxInputChars   = 50000
	truncatedMarker = "\n\n[Document truncated due to length...]"
	minInputChars   = 10
)

const legalSummaryPrompt = `You are an expert legal document analyst. Summarize the following legal document into concise bullet points.

RULES:
- Use simple, easy-to-understand language
- Highlight key clauses and the rights of each party
- Highlight key legal obligations
- Highlight important dates and deadlines
- Highlight penalties, fines, or consequences
- Highlight actions required by each party
- Keep each bullet point to 1-2 sentences maximum
- Use bullet points (•) for formatting
- If the document is not legal, still summarize it clearly

DOCUMENT TEXT:
`

// Generator is the part of llm.ModelSelector the summarizer needs.
type Generator interface {
	Generate(ctx context.Context, req core.GenerateRequest) (text, model string, err error)
}

// Summarizer turns extracted text into a plain-language legal summary. The
// credential is bound at construction; hasKey false means none was configured.
type Summarizer struct {
	gen    Generator
	hasKey bool
	logger *slog.Logger
}

func New(gen Generator, hasKey bool, logger *slog.Logger) *Summarizer {
	return &Summarizer{gen: gen, hasKey: hasKey, logger: logging.Component(logger, "summarizer")}
}

func (s *Summarizer) Summarize(ctx context.Context, text string) (*models.SummaryResult, error) {
	const op = "summarize"
	if !s.hasKey || s.gen == nil {
		return nil, scanerr.New(scanerr.KindInvalidCredential, op, "Gemini API key is not configured")
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minInputChars {
		return nil, scanerr.New(scanerr.KindSummarization, op, "Extracted text is too short to summarize")
	}

	input := Truncate(text)
	start := time.Now()

	summary, model, err := s.gen.Generate(ctx, core.GenerateRequest{Prompt: legalSummaryPrompt + input})
	if err != nil {
		return nil, tag(op, err)
	}
	if strings.TrimSpace(summary) == "" {
		return nil, scanerr.New(scanerr.KindSummarization, op, "Gemini returned an empty summary")
	}

	s.logger.Info("summary generated",
		"model", model,
		"input_chars", utf8.RuneCountInString(input),
		"summary_chars", utf8.RuneCountInString(summary),
		"elapsed", time.Since(start).Round(100*time.Millisecond),
	)
	return &models.SummaryResult{Text: summary, Model: model}, nil
}

// Truncate cuts text to MaxInputChars characters and appends a marker when
// anything was dropped.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxInputChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxInputChars]) + truncatedMarker
}

// tag keeps a backend kind and relabels unclassified failures as summarization.
func tag(op string, err error) error {
	kind := scanerr.KindOf(err)
	if kind == scanerr.KindUnknown {
		kind = scanerr.KindSummarization
	}
	return &scanerr.Error{Kind: kind, Op: op, Detail: "Gemini summarization failed", Err: err}
}
