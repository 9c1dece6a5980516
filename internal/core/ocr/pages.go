package ocr

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// IsPDFData sniffs the PDF header.
func IsPDFData(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-"))
}

// ExtractPageImages returns the raster images embedded in a PDF, in page order.
// Scanned documents carry one image per page.
func ExtractPageImages(pdf []byte) ([][]byte, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.ExtractImagesRaw(bytes.NewReader(pdf), nil, conf)
	if err != nil {
		return nil, fmt.Errorf("extract page images: %w", err)
	}

	var out [][]byte
	for _, imgs := range pages {
		objNrs := make([]int, 0, len(imgs))
		for nr := range imgs {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)
		for _, nr := range objNrs {
			data, err := io.ReadAll(imgs[nr])
			if err != nil {
				return nil, fmt.Errorf("read image obj %d: %w", nr, err)
			}
			if len(data) > 0 {
				out = append(out, data)
			}
		}
	}
	return out, nil
}
