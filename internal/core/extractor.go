package core

import (
	"context"

	"github.com/markdave123-py/LegalScan/internal/models"
)

// TextExtractor recovers text from an uploaded file.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, mediaType, fileName string) (*models.ExtractionResult, error)
}

// TextLayerReader reads the embedded text layer of a PDF. It fails when the
// document cannot be parsed structurally.
type TextLayerReader interface {
	ReadTextLayer(ctx context.Context, pdf []byte) (string, error)
}

// OCRProgress receives coarse recognition progress. Percent is in [0, 100].
type OCRProgress func(stage string, percent int)

// OCREngine recognizes text in raw image or PDF bytes.
type OCREngine interface {
	Recognize(ctx context.Context, data []byte, progress OCRProgress) (string, error)
}
