// Package pipeline runs one upload through extract, summarize and narrate.
//
// Stages run sequentially on the caller's goroutine. Extraction and
// summarization are mandatory; narration is optional and its failure is
// downgraded to "no audio". Every failure leaves the pipeline as a
// scanerr.Error so the HTTP layer can map it without reading messages.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

const (
	DefaultMaxUploadBytes = 10 << 20
	DefaultLanguage       = "English"
	minReadableChars      = 10
)

var allowedMediaTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/webp":      true,
	"image/bmp":       true,
	"image/tiff":      true,
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (*models.SummaryResult, error)
}

type Narrator interface {
	Narrate(ctx context.Context, text string) (*models.NarrationResult, error)
}

type Options struct {
	MaxUploadBytes int64
	Language       string
}

type Pipeline struct {
	extractor  core.TextExtractor
	summarizer Summarizer
	narrator   Narrator
	maxUpload  int64
	language   string
	logger     *slog.Logger
}

// New builds a pipeline. narrator may be nil to disable narration.
func New(extractor core.TextExtractor, summarizer Summarizer, narrator Narrator, opts Options, logger *slog.Logger) *Pipeline {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	return &Pipeline{
		extractor:  extractor,
		summarizer: summarizer,
		narrator:   narrator,
		maxUpload:  opts.MaxUploadBytes,
		language:   opts.Language,
		logger:     logging.Component(logger, "pipeline"),
	}
}

func (p *Pipeline) MaxUploadBytes() int64 { return p.maxUpload }

// TooLargeMessage is the caller-facing message for an oversize upload.
func (p *Pipeline) TooLargeMessage() string {
	return fmt.Sprintf("File too large. Maximum size is %d MB.", p.maxUpload>>20)
}

// NormalizeMediaType lowercases a media type and drops its parameters.
func NormalizeMediaType(mt string) string {
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// Validate checks an upload before any stage runs.
func (p *Pipeline) Validate(doc *models.UploadedDocument) error {
	const op = "validate upload"
	if doc == nil || (len(doc.Bytes) == 0 && doc.Size == 0) {
		return scanerr.New(scanerr.KindInvalidUpload, op, "No file uploaded. Please upload a PDF or image file.")
	}
	size := doc.Size
	if n := int64(len(doc.Bytes)); n > size {
		size = n
	}
	if size > p.maxUpload {
		return scanerr.New(scanerr.KindPayloadTooLarge, op, p.TooLargeMessage())
	}
	if mt := NormalizeMediaType(doc.MediaType); !allowedMediaTypes[mt] {
		return scanerr.New(scanerr.KindInvalidUpload, op,
			fmt.Sprintf("Invalid file type: %s. Allowed: PDF, PNG, JPG, WebP, BMP, TIFF", doc.MediaType))
	}
	return nil
}

// Run processes one upload. The response is always non-nil and carries the
// elapsed time; on failure it also carries whatever text was extracted.
func (p *Pipeline) Run(ctx context.Context, doc *models.UploadedDocument) (*models.PipelineResponse, error) {
	start := time.Now()
	resp := &models.PipelineResponse{Language: p.language}
	if doc != nil {
		resp.FileName = doc.FileName
	}
	finish := func(err error) (*models.PipelineResponse, error) {
		resp.ProcessingTime = formatElapsed(time.Since(start))
		if err != nil {
			p.logger.Error("scan failed", "file", resp.FileName, "kind", scanerr.KindOf(err).String(), "elapsed", resp.ProcessingTime, "error", err)
		}
		return resp, err
	}

	if err := p.Validate(doc); err != nil {
		return finish(err)
	}
	p.logger.Info("scan started", "file", doc.FileName, "bytes", len(doc.Bytes), "media_type", doc.MediaType)

	extracted, err := p.extractor.Extract(ctx, doc.Bytes, NormalizeMediaType(doc.MediaType), doc.FileName)
	if err != nil {
		return finish(err)
	}
	resp.ExtractedText = extracted.Text
	resp.OCRMethod = extracted.Method
	p.logger.Info("text extracted", "method", string(extracted.Method), "chars", utf8.RuneCountInString(extracted.Text))

	if utf8.RuneCountInString(strings.TrimSpace(extracted.Text)) < minReadableChars {
		return finish(scanerr.New(scanerr.KindUnreadable, "validate text", "Could not extract readable text from the document."))
	}

	summary, err := p.summarizer.Summarize(ctx, extracted.Text)
	if err != nil {
		return finish(err)
	}
	resp.Summary = summary.Text
	resp.Model = summary.Model

	if p.narrator != nil {
		p.attachNarration(ctx, resp)
	} else {
		p.logger.Debug("narration disabled")
	}

	resp.Success = true
	out, _ := finish(nil)
	p.logger.Info("scan complete", "file", resp.FileName, "model", resp.Model, "elapsed", resp.ProcessingTime)
	return out, nil
}

// attachNarration fills the audio fields. A narration error only logs.
func (p *Pipeline) attachNarration(ctx context.Context, resp *models.PipelineResponse) {
	audio, err := p.narrator.Narrate(ctx, resp.Summary)
	if err != nil {
		p.logger.Warn("narration failed, continuing without audio", "error", err)
		return
	}
	resp.AudioBase64 = &audio.AudioBase64
	resp.MimeType = &audio.MimeType
	if audio.Path != "" {
		resp.AudioPath = &audio.Path
	}
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
