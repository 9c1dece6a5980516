package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/ocr"
	"github.com/markdave123-py/LegalScan/internal/core/pipeline"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

type fakeTextLayer struct {
	text string
	err  error
}

func (f *fakeTextLayer) ReadTextLayer(context.Context, []byte) (string, error) {
	return f.text, f.err
}

type fakeOCR struct {
	text  string
	err   error
	calls int
}

func (f *fakeOCR) Recognize(_ context.Context, _ []byte, progress core.OCRProgress) (string, error) {
	f.calls++
	if progress != nil {
		progress("recognizing", 100)
	}
	return f.text, f.err
}

var pdfBytes = []byte("%PDF-1.4 fake")

func TestIsPDF(t *testing.T) {
	tests := []struct {
		mediaType, fileName string
		want                bool
	}{
		{"application/pdf", "scan", true},
		{"application/octet-stream", "Contract.PDF", true},
		{"image/png", "page.png", false},
		{"image/jpeg", "", false},
	}
	for _, tt := range tests {
		if got := IsPDF(tt.mediaType, tt.fileName); got != tt.want {
			t.Errorf("IsPDF(%q, %q) = %v, want %v", tt.mediaType, tt.fileName, got, tt.want)
		}
	}
}

func TestExtract(t *testing.T) {
	longText := strings.Repeat("Clause 1. The tenant shall pay rent. ", 3)
	exactly50 := strings.Repeat("x", MinEmbeddedChars)

	tests := []struct {
		name       string
		mediaType  string
		fileName   string
		layer      *fakeTextLayer
		ocr        *fakeOCR
		wantText   string
		wantMethod models.ExtractionMethod
		wantKind   scanerr.Kind
		wantOCR    int
	}{
		{
			name: "embedded text skips ocr", mediaType: "application/pdf",
			layer: &fakeTextLayer{text: "\n" + longText + "\n"}, ocr: &fakeOCR{},
			wantText: strings.TrimSpace(longText), wantMethod: models.MethodEmbeddedText, wantOCR: 0,
		},
		{
			name: "fifty chars is enough", mediaType: "application/pdf",
			layer: &fakeTextLayer{text: exactly50}, ocr: &fakeOCR{},
			wantText: exactly50, wantMethod: models.MethodEmbeddedText, wantOCR: 0,
		},
		{
			name: "pdf by extension", mediaType: "application/octet-stream", fileName: "deed.pdf",
			layer: &fakeTextLayer{text: longText}, ocr: &fakeOCR{},
			wantText: strings.TrimSpace(longText), wantMethod: models.MethodEmbeddedText,
		},
		{
			name: "short layer falls back to ocr", mediaType: "application/pdf",
			layer: &fakeTextLayer{text: "Page 1"}, ocr: &fakeOCR{text: "  scanned lease text  "},
			wantText: "scanned lease text", wantMethod: models.MethodOCRPDFFallback, wantOCR: 1,
		},
		{
			name: "blank pdf without page images", mediaType: "application/pdf",
			layer: &fakeTextLayer{text: "Hi"}, ocr: &fakeOCR{err: ocr.ErrNoPageImages},
			wantText: "", wantMethod: models.MethodOCRPDFFallback, wantOCR: 1,
		},
		{
			name: "malformed pdf rescued by ocr", mediaType: "application/pdf",
			layer: &fakeTextLayer{err: errors.New("bad xref")}, ocr: &fakeOCR{text: "recovered agreement"},
			wantText: "recovered agreement", wantMethod: models.MethodOCRPDFFallback, wantOCR: 1,
		},
		{
			name: "malformed pdf with weak ocr", mediaType: "application/pdf",
			layer: &fakeTextLayer{err: errors.New("bad xref")}, ocr: &fakeOCR{text: "ten chars!"},
			wantKind: scanerr.KindExtraction, wantOCR: 1,
		},
		{
			name: "malformed pdf with failing ocr", mediaType: "application/pdf",
			layer: &fakeTextLayer{err: errors.New("bad xref")}, ocr: &fakeOCR{err: errors.New("tesseract")},
			wantKind: scanerr.KindExtraction, wantOCR: 1,
		},
		{
			name: "image ocr", mediaType: "image/png", fileName: "notice.png",
			layer: &fakeTextLayer{err: errors.New("must not be called")}, ocr: &fakeOCR{text: "NOTICE OF EVICTION"},
			wantText: "NOTICE OF EVICTION", wantMethod: models.MethodOCRImage, wantOCR: 1,
		},
		{
			name: "image without text", mediaType: "image/jpeg",
			layer: &fakeTextLayer{}, ocr: &fakeOCR{text: " ab "},
			wantKind: scanerr.KindUnreadable, wantOCR: 1,
		},
		{
			name: "text file posing as image", mediaType: "image/png", fileName: "notes.txt",
			layer: &fakeTextLayer{}, ocr: &fakeOCR{err: fmt.Errorf("%w: unknown format", ocr.ErrUndecodableImage)},
			wantKind: scanerr.KindUnreadable, wantOCR: 1,
		},
		{
			name: "image ocr failure", mediaType: "image/webp",
			layer: &fakeTextLayer{}, ocr: &fakeOCR{err: errors.New("decode")},
			wantKind: scanerr.KindExtraction, wantOCR: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewDocumentExtractor(tt.layer, tt.ocr, logging.Discard())
			res, err := e.Extract(context.Background(), pdfBytes, tt.mediaType, tt.fileName)

			if tt.wantKind != scanerr.KindUnknown {
				if got := scanerr.KindOf(err); got != tt.wantKind {
					t.Fatalf("KindOf() = %v (err %v), want %v", got, err, tt.wantKind)
				}
			} else {
				if err != nil {
					t.Fatalf("Extract() error = %v", err)
				}
				if res.Text != tt.wantText || res.Method != tt.wantMethod {
					t.Errorf("Extract() = %q/%s, want %q/%s", res.Text, res.Method, tt.wantText, tt.wantMethod)
				}
			}
			if tt.ocr.calls != tt.wantOCR {
				t.Errorf("ocr calls = %d, want %d", tt.ocr.calls, tt.wantOCR)
			}
		})
	}
}

func TestExtractEmptyInput(t *testing.T) {
	ocr := &fakeOCR{}
	e := NewDocumentExtractor(&fakeTextLayer{}, ocr, logging.Discard())

	_, err := e.Extract(context.Background(), nil, "application/pdf", "x.pdf")
	if scanerr.Message(err) != "Empty file received" {
		t.Errorf("Message() = %q", scanerr.Message(err))
	}
	if ocr.calls != 0 {
		t.Error("ocr should not run on empty input")
	}
}

func TestMalformedPDFErrorNamesParseFailure(t *testing.T) {
	e := NewDocumentExtractor(&fakeTextLayer{err: errors.New("bad xref table")}, &fakeOCR{}, logging.Discard())
	_, err := e.Extract(context.Background(), pdfBytes, "application/pdf", "")
	if !strings.Contains(scanerr.Message(err), "bad xref table") {
		t.Errorf("Message() = %q, want parse failure named", scanerr.Message(err))
	}
}

type countingSummarizer struct{ calls int }

func (s *countingSummarizer) Summarize(context.Context, string) (*models.SummaryResult, error) {
	s.calls++
	return &models.SummaryResult{Text: "summary", Model: "m"}, nil
}

func TestScanOfUnreadableInputIsUnprocessable(t *testing.T) {
	tests := []struct {
		name       string
		doc        *models.UploadedDocument
		layer      *fakeTextLayer
		ocr        *fakeOCR
		wantMethod models.ExtractionMethod
	}{
		{
			name:       "pdf without text or page images",
			doc:        &models.UploadedDocument{Bytes: pdfBytes, MediaType: "application/pdf", FileName: "blank.pdf"},
			layer:      &fakeTextLayer{text: "Hi"},
			ocr:        &fakeOCR{err: ocr.ErrNoPageImages},
			wantMethod: models.MethodOCRPDFFallback,
		},
		{
			name:  "text file sent as png",
			doc:   &models.UploadedDocument{Bytes: []byte("just some notes"), MediaType: "image/png", FileName: "notes.png"},
			layer: &fakeTextLayer{},
			ocr:   &fakeOCR{err: fmt.Errorf("%w: unknown format", ocr.ErrUndecodableImage)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := &countingSummarizer{}
			p := pipeline.New(NewDocumentExtractor(tt.layer, tt.ocr, logging.Discard()), sum, nil, pipeline.Options{}, logging.Discard())
			tt.doc.Size = int64(len(tt.doc.Bytes))

			resp, err := p.Run(context.Background(), tt.doc)
			if got := scanerr.KindOf(err); got != scanerr.KindUnreadable {
				t.Fatalf("KindOf() = %v (err %v), want unreadable", got, err)
			}
			if resp.ExtractedText != "" {
				t.Errorf("ExtractedText = %q, want empty", resp.ExtractedText)
			}
			if resp.OCRMethod != tt.wantMethod {
				t.Errorf("OCRMethod = %q, want %q", resp.OCRMethod, tt.wantMethod)
			}
			if sum.calls != 0 {
				t.Error("summarizer ran on unreadable input")
			}
		})
	}
}
