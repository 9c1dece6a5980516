package pipeline

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
	"github.com/markdave123-py/LegalScan/internal/models"
)

type fakeExtractor struct {
	res   *models.ExtractionResult
	err   error
	calls int
	mt    string
}

func (f *fakeExtractor) Extract(_ context.Context, _ []byte, mediaType, _ string) (*models.ExtractionResult, error) {
	f.calls++
	f.mt = mediaType
	return f.res, f.err
}

type fakeSummarizer struct {
	res   *models.SummaryResult
	err   error
	calls int
}

func (f *fakeSummarizer) Summarize(context.Context, string) (*models.SummaryResult, error) {
	f.calls++
	return f.res, f.err
}

type fakeNarrator struct {
	res   *models.NarrationResult
	err   error
	calls int
}

func (f *fakeNarrator) Narrate(context.Context, string) (*models.NarrationResult, error) {
	f.calls++
	return f.res, f.err
}

var elapsedPattern = regexp.MustCompile(`^\d+\.\ds$`)

const leaseText = "This lease is entered into by the landlord and the tenant."

func goodDoc() *models.UploadedDocument {
	data := []byte("%PDF-1.4 lease")
	return &models.UploadedDocument{Bytes: data, MediaType: "application/pdf", FileName: "lease.pdf", Size: int64(len(data))}
}

func newFakes() (*fakeExtractor, *fakeSummarizer, *fakeNarrator) {
	return &fakeExtractor{res: &models.ExtractionResult{Text: leaseText, Method: models.MethodEmbeddedText}},
		&fakeSummarizer{res: &models.SummaryResult{Text: "• Tenant pays rent.", Model: "gemini-2.5-flash"}},
		&fakeNarrator{res: &models.NarrationResult{AudioBase64: "bXAz", MimeType: "audio/mpeg", Path: "/uploads/audio/scan_1.mp3"}}
}

func TestRunSuccess(t *testing.T) {
	ex, sum, nar := newFakes()
	p := New(ex, sum, nar, Options{}, logging.Discard())

	resp, err := p.Run(context.Background(), goodDoc())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !resp.Success || resp.Summary != "• Tenant pays rent." || resp.Model != "gemini-2.5-flash" {
		t.Errorf("response = %+v", resp)
	}
	if resp.ExtractedText != leaseText || resp.OCRMethod != models.MethodEmbeddedText {
		t.Errorf("extraction fields = %q/%s", resp.ExtractedText, resp.OCRMethod)
	}
	if resp.AudioBase64 == nil || *resp.AudioBase64 != "bXAz" || resp.AudioPath == nil || resp.MimeType == nil {
		t.Errorf("audio fields not set: %+v", resp)
	}
	if resp.FileName != "lease.pdf" || resp.Language != DefaultLanguage {
		t.Errorf("FileName/Language = %q/%q", resp.FileName, resp.Language)
	}
	if !elapsedPattern.MatchString(resp.ProcessingTime) {
		t.Errorf("ProcessingTime = %q", resp.ProcessingTime)
	}
}

func TestRunRejectsBeforeAnyStage(t *testing.T) {
	big := make([]byte, DefaultMaxUploadBytes+1)
	tests := []struct {
		name     string
		doc      *models.UploadedDocument
		wantKind scanerr.Kind
		wantMsg  string
	}{
		{"missing", nil, scanerr.KindInvalidUpload, "No file uploaded"},
		{"empty", &models.UploadedDocument{MediaType: "application/pdf"}, scanerr.KindInvalidUpload, "No file uploaded"},
		{"oversize", &models.UploadedDocument{Bytes: big, MediaType: "application/pdf", Size: int64(len(big))}, scanerr.KindPayloadTooLarge, "too large"},
		{"oversize by declared size", &models.UploadedDocument{Bytes: []byte("x"), MediaType: "image/png", Size: DefaultMaxUploadBytes + 1}, scanerr.KindPayloadTooLarge, "too large"},
		{"bad type", &models.UploadedDocument{Bytes: []byte("x"), MediaType: "text/plain", Size: 1}, scanerr.KindInvalidUpload, "Invalid file type: text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, sum, nar := newFakes()
			resp, err := New(ex, sum, nar, Options{}, logging.Discard()).Run(context.Background(), tt.doc)

			if got := scanerr.KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", got, tt.wantKind)
			}
			if !strings.Contains(scanerr.Message(err), tt.wantMsg) {
				t.Errorf("Message() = %q, want it to contain %q", scanerr.Message(err), tt.wantMsg)
			}
			if ex.calls+sum.calls+nar.calls != 0 {
				t.Errorf("stages ran: extract=%d summarize=%d narrate=%d", ex.calls, sum.calls, nar.calls)
			}
			if resp == nil || resp.Success || !elapsedPattern.MatchString(resp.ProcessingTime) {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestRunMediaTypeParameters(t *testing.T) {
	ex, sum, nar := newFakes()
	doc := goodDoc()
	doc.MediaType = "Application/PDF; charset=binary"

	if _, err := New(ex, sum, nar, Options{}, logging.Discard()).Run(context.Background(), doc); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ex.mt != "application/pdf" {
		t.Errorf("extractor media type = %q", ex.mt)
	}
}

func TestRunUnreadableText(t *testing.T) {
	ex, sum, nar := newFakes()
	ex.res = &models.ExtractionResult{Text: "short", Method: models.MethodOCRPDFFallback}

	resp, err := New(ex, sum, nar, Options{}, logging.Discard()).Run(context.Background(), goodDoc())
	if scanerr.KindOf(err) != scanerr.KindUnreadable {
		t.Fatalf("KindOf() = %v, want unreadable", scanerr.KindOf(err))
	}
	if scanerr.Message(err) != "Could not extract readable text from the document." {
		t.Errorf("Message() = %q", scanerr.Message(err))
	}
	if resp.ExtractedText != "short" {
		t.Errorf("ExtractedText = %q, want the partial text", resp.ExtractedText)
	}
	if sum.calls != 0 {
		t.Error("summarizer must not run on unreadable text")
	}
}

func TestRunStageErrorsPropagate(t *testing.T) {
	t.Run("extraction", func(t *testing.T) {
		ex, sum, nar := newFakes()
		ex.err = scanerr.New(scanerr.KindExtraction, "extract pdf", "Failed to extract text from PDF")
		_, err := New(ex, sum, nar, Options{}, logging.Discard()).Run(context.Background(), goodDoc())
		if scanerr.KindOf(err) != scanerr.KindExtraction || sum.calls != 0 {
			t.Errorf("KindOf() = %v, summarize calls = %d", scanerr.KindOf(err), sum.calls)
		}
	})
	t.Run("summarization quota", func(t *testing.T) {
		ex, sum, nar := newFakes()
		sum.err = scanerr.New(scanerr.KindQuotaExceeded, "summarize", "quota")
		resp, err := New(ex, sum, nar, Options{}, logging.Discard()).Run(context.Background(), goodDoc())
		if scanerr.KindOf(err) != scanerr.KindQuotaExceeded {
			t.Errorf("KindOf() = %v", scanerr.KindOf(err))
		}
		if nar.calls != 0 || resp.Success {
			t.Error("narration must not run after a summarization failure")
		}
	})
}

func TestRunNarrationFailureIsNotFatal(t *testing.T) {
	ex, sum, nar := newFakes()
	nar.res = nil
	nar.err = errors.New("ElevenLabs API returned 401: invalid key")

	resp, err := New(ex, sum, nar, Options{}, logging.Discard()).Run(context.Background(), goodDoc())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if resp.AudioBase64 != nil || resp.AudioPath != nil || resp.MimeType != nil {
		t.Errorf("audio fields should be nil: %+v", resp)
	}
}

func TestRunWithoutNarrator(t *testing.T) {
	ex, sum, _ := newFakes()
	resp, err := New(ex, sum, nil, Options{}, logging.Discard()).Run(context.Background(), goodDoc())
	if err != nil || !resp.Success || resp.AudioBase64 != nil {
		t.Errorf("Run() = %+v, %v", resp, err)
	}
}

func TestTooLargeMessage(t *testing.T) {
	p := New(nil, nil, nil, Options{}, logging.Discard())
	if got := p.TooLargeMessage(); got != "File too large. Maximum size is 10 MB." {
		t.Errorf("TooLargeMessage() = %q", got)
	}
}
