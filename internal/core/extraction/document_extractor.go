package extraction

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/ocr"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

const (
	// MinEmbeddedChars is the text-layer length at which OCR is skipped.
	MinEmbeddedChars = 50
	minFallbackChars = 10
	minImageChars    = 5
)

var _ core.TextExtractor = (*DocumentExtractor)(nil)

// DocumentExtractor reads PDFs through their text layer with OCR as fallback,
// and raster images through OCR only.
type DocumentExtractor struct {
	textLayer core.TextLayerReader
	ocr       core.OCREngine
	logger    *slog.Logger
}

func NewDocumentExtractor(textLayer core.TextLayerReader, ocr core.OCREngine, logger *slog.Logger) *DocumentExtractor {
	return &DocumentExtractor{textLayer: textLayer, ocr: ocr, logger: logging.Component(logger, "extractor")}
}

// IsPDF reports whether an upload should take the PDF path.
func IsPDF(mediaType, fileName string) bool {
	return mediaType == "application/pdf" || strings.EqualFold(filepath.Ext(fileName), ".pdf")
}

func (e *DocumentExtractor) Extract(ctx context.Context, data []byte, mediaType, fileName string) (*models.ExtractionResult, error) {
	if len(data) == 0 {
		return nil, scanerr.New(scanerr.KindInvalidUpload, "extract", "Empty file received")
	}
	if IsPDF(mediaType, fileName) {
		return e.extractPDF(ctx, data)
	}
	return e.extractImage(ctx, data)
}

func (e *DocumentExtractor) extractPDF(ctx context.Context, data []byte) (*models.ExtractionResult, error) {
	const op = "extract pdf"

	text, err := e.textLayer.ReadTextLayer(ctx, data)
	if err != nil {
		e.logger.Warn("pdf text layer unavailable, trying ocr", "error", err)
		ocrText, ocrErr := e.recognize(ctx, data)
		if ocrErr == nil && utf8.RuneCountInString(ocrText) > minFallbackChars {
			return &models.ExtractionResult{Text: ocrText, Method: models.MethodOCRPDFFallback}, nil
		}
		if ocrErr != nil {
			e.logger.Error("fallback ocr failed", "error", ocrErr)
		}
		return nil, scanerr.Wrap(scanerr.KindExtraction, op, "Failed to extract text from PDF", err)
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) >= MinEmbeddedChars {
		e.logger.Info("pdf text layer extracted", "chars", utf8.RuneCountInString(text))
		return &models.ExtractionResult{Text: text, Method: models.MethodEmbeddedText}, nil
	}

	e.logger.Info("pdf has minimal text layer, running ocr", "chars", utf8.RuneCountInString(text))
	ocrText, err := e.recognize(ctx, data)
	if errors.Is(err, ocr.ErrNoPageImages) {
		// blank or vector-only pages; the readable-text check rejects it later
		e.logger.Info("pdf has no page images to recognize")
		return &models.ExtractionResult{Text: "", Method: models.MethodOCRPDFFallback}, nil
	}
	if err != nil {
		return nil, scanerr.Wrap(scanerr.KindExtraction, op, "Failed to extract text from PDF", err)
	}
	return &models.ExtractionResult{Text: ocrText, Method: models.MethodOCRPDFFallback}, nil
}

func (e *DocumentExtractor) extractImage(ctx context.Context, data []byte) (*models.ExtractionResult, error) {
	const op = "extract image"

	text, err := e.recognize(ctx, data)
	if errors.Is(err, ocr.ErrUndecodableImage) {
		return nil, scanerr.Wrap(scanerr.KindUnreadable, op, "No readable text found in image", err)
	}
	if err != nil {
		return nil, scanerr.Wrap(scanerr.KindExtraction, op, "Failed to extract text from image", err)
	}
	if utf8.RuneCountInString(text) < minImageChars {
		return nil, scanerr.New(scanerr.KindUnreadable, op, "No readable text found in image")
	}
	e.logger.Info("image ocr extracted", "chars", utf8.RuneCountInString(text))
	return &models.ExtractionResult{Text: text, Method: models.MethodOCRImage}, nil
}

func (e *DocumentExtractor) recognize(ctx context.Context, data []byte) (string, error) {
	if e.ocr == nil {
		return "", scanerr.New(scanerr.KindExtraction, "ocr", "OCR engine is not configured")
	}
	start := time.Now()
	text, err := e.ocr.Recognize(ctx, data, e.progress)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	e.logger.Info("ocr completed", "chars", utf8.RuneCountInString(text), "elapsed", time.Since(start).Round(100*time.Millisecond))
	return text, nil
}

func (e *DocumentExtractor) progress(stage string, percent int) {
	e.logger.Debug("ocr progress", "stage", stage, "percent", percent)
}
