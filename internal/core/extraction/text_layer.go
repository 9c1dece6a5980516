package extraction

import (
	"bytes"
	"context"
	"fmt"

	"code.sajari.com/docconv"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/markdave123-py/LegalScan/internal/core"
)

// PDFTextLayer parses the PDF structure with pdfcpu, then reads its embedded
// text with docconv. A structural failure is reported as an error so callers
// can tell a malformed file from a scanned one.
type PDFTextLayer struct {
	useReadability bool
	conf           *model.Configuration
}

func NewPDFTextLayer(useReadability bool) *PDFTextLayer {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFTextLayer{useReadability: useReadability, conf: conf}
}

func (p *PDFTextLayer) ReadTextLayer(ctx context.Context, pdf []byte) (string, error) {
	pages, err := api.PageCount(bytes.NewReader(pdf), p.conf)
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	if pages == 0 {
		return "", fmt.Errorf("parse pdf: no pages")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := docconv.Convert(bytes.NewReader(pdf), "application/pdf", p.useReadability)
	if err != nil {
		return "", fmt.Errorf("read text layer: %w", err)
	}
	return res.Body, nil
}

var _ core.TextLayerReader = (*PDFTextLayer)(nil)
