package llm

import (
	"context"
	"sync"

	"github.com/markdave123-py/LegalScan/internal/core"
)

type call struct {
	model  string
	prompt string
}

// fakeProvider answers per model. A model with queued errors returns them
// in order before falling back to its reply.
type fakeProvider struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string][]error
	calls   []call
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{replies: map[string]string{}, errs: map[string][]error{}}
}

func (f *fakeProvider) Generate(_ context.Context, model string, req core.GenerateRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{model: model, prompt: req.Prompt})
	if q := f.errs[model]; len(q) > 0 {
		f.errs[model] = q[1:]
		return "", q[0]
	}
	return f.replies[model], nil
}

func (f *fakeProvider) callsTo(model, prompt string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.model == model && (prompt == "" || c.prompt == prompt) {
			n++
		}
	}
	return n
}
