package ocr

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/logging"
)

var (
	ErrNoPageImages = errors.New("pdf contains no page images to recognize")
	// ErrUndecodableImage means the bytes are not an image the recognizer can load.
	ErrUndecodableImage = errors.New("image could not be decoded")
)

// ImageRecognizer runs OCR on a single encoded image.
type ImageRecognizer interface {
	RecognizeImage(ctx context.Context, img []byte) (string, error)
}

// Engine implements core.OCREngine. Images are recognized directly; PDFs are
// split into their page images and recognized concurrently.
type Engine struct {
	images     ImageRecognizer
	workers    int
	pageImages func(pdf []byte) ([][]byte, error)
	logger     *slog.Logger
}

func NewEngine(images ImageRecognizer, workers int, logger *slog.Logger) *Engine {
	if workers <= 0 {
		workers = 1
	}
	return &Engine{
		images:     images,
		workers:    workers,
		pageImages: ExtractPageImages,
		logger:     logging.Component(logger, "ocr"),
	}
}

func (e *Engine) Recognize(ctx context.Context, data []byte, progress core.OCRProgress) (string, error) {
	rep := NewReporter(progress, 0)
	defer rep.Close()

	rep.Report("start", 0)
	if !IsPDFData(data) {
		text, err := e.images.RecognizeImage(ctx, data)
		if err != nil {
			return "", err
		}
		rep.Report("done", 100)
		return strings.TrimSpace(text), nil
	}

	pages, err := e.pageImages(data)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", ErrNoPageImages
	}
	e.logger.Debug("recognizing pdf pages", "pages", len(pages), "workers", e.workers)

	texts := make([]string, len(pages))
	var finished atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, img := range pages {
		g.Go(func() error {
			text, err := e.images.RecognizeImage(gctx, img)
			if err != nil {
				return err
			}
			texts[i] = strings.TrimSpace(text)
			n := finished.Add(1)
			rep.Report("page", int(n)*100/len(pages))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	rep.Report("done", 100)
	return strings.TrimSpace(strings.Join(texts, "\n\n")), nil
}

var _ core.OCREngine = (*Engine)(nil)
