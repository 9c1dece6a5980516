package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/markdave123-py/LegalScan/internal/logging"
)

type fakeImages struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeImages) RecognizeImage(_ context.Context, img []byte) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf(" text of %s \n", img), nil
}

func newTestEngine(images ImageRecognizer, pages [][]byte, pagesErr error) *Engine {
	e := NewEngine(images, 2, logging.Discard())
	e.pageImages = func([]byte) ([][]byte, error) { return pages, pagesErr }
	return e
}

func TestRecognizeImage(t *testing.T) {
	images := &fakeImages{}
	e := newTestEngine(images, nil, errors.New("must not split images"))

	var stages []string
	var mu sync.Mutex
	got, err := e.Recognize(context.Background(), []byte("png"), func(stage string, _ int) {
		mu.Lock()
		stages = append(stages, stage)
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if got != "text of png" {
		t.Errorf("Recognize() = %q", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(stages) != 2 || stages[0] != "start" || stages[1] != "done" {
		t.Errorf("progress stages = %v, want [start done]", stages)
	}
}

func TestRecognizePDFKeepsPageOrder(t *testing.T) {
	images := &fakeImages{}
	pages := [][]byte{[]byte("p1"), []byte("p2"), []byte("p3"), []byte("p4")}
	e := newTestEngine(images, pages, nil)

	got, err := e.Recognize(context.Background(), []byte("%PDF-1.7\n..."), nil)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	want := "text of p1\n\ntext of p2\n\ntext of p3\n\ntext of p4"
	if got != want {
		t.Errorf("Recognize() = %q, want %q", got, want)
	}
	if images.calls != len(pages) {
		t.Errorf("calls = %d, want %d", images.calls, len(pages))
	}
}

func TestRecognizePDFErrors(t *testing.T) {
	pdf := []byte("%PDF-1.4")

	if _, err := newTestEngine(&fakeImages{}, nil, nil).Recognize(context.Background(), pdf, nil); !errors.Is(err, ErrNoPageImages) {
		t.Errorf("no pages: err = %v, want ErrNoPageImages", err)
	}

	split := errors.New("corrupt")
	if _, err := newTestEngine(&fakeImages{}, nil, split).Recognize(context.Background(), pdf, nil); !errors.Is(err, split) {
		t.Errorf("split failure: err = %v", err)
	}

	boom := errors.New("tesseract crashed")
	e := newTestEngine(&fakeImages{err: boom}, [][]byte{[]byte("p1")}, nil)
	if _, err := e.Recognize(context.Background(), pdf, nil); !errors.Is(err, boom) {
		t.Errorf("page failure: err = %v", err)
	}
}

func TestIsPDFData(t *testing.T) {
	if !IsPDFData([]byte("\n%PDF-1.5")) {
		t.Error("leading whitespace should be ignored")
	}
	if IsPDFData([]byte("\x89PNG")) {
		t.Error("png detected as pdf")
	}
}
