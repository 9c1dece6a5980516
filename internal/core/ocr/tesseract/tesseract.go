// Package tesseract binds the OCR engine to libtesseract through gosseract.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/otiai10/gosseract/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/markdave123-py/LegalScan/internal/core/ocr"
)

// Recognizer creates one gosseract client per image; clients are not safe
// for concurrent use.
type Recognizer struct {
	language string
}

func New(language string) *Recognizer {
	if language == "" {
		language = "eng"
	}
	return &Recognizer{language: language}
}

func (r *Recognizer) RecognizeImage(ctx context.Context, img []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// reject non-image bytes before they reach leptonica
	if _, _, err := image.DecodeConfig(bytes.NewReader(img)); err != nil {
		return "", fmt.Errorf("%w: %v", ocr.ErrUndecodableImage, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.language); err != nil {
		return "", fmt.Errorf("tesseract language %q: %w", r.language, err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return "", fmt.Errorf("%w: tesseract load image: %v", ocr.ErrUndecodableImage, err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognize: %w", err)
	}
	return text, nil
}
