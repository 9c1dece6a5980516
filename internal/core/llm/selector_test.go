package llm

import (
	"context"
	"testing"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
)

var candidates = []string{"model-a", "model-b", "model-c"}

func newTestSelector(p core.LLMProvider) *ModelSelector {
	return NewModelSelector("test", p, candidates, WithLogger(logging.Discard()))
}

func TestProbePicksFirstWorkingCandidate(t *testing.T) {
	p := newFakeProvider()
	p.errs["model-a"] = []error{scanerr.New(scanerr.KindModelUnavailable, "gen", "")}
	p.replies["model-b"] = "OK"
	p.replies["model-c"] = "OK"
	s := newTestSelector(p)

	got, err := s.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if got != "model-b" {
		t.Errorf("Probe() = %q, want model-b", got)
	}
	if active, ok := s.Active(context.Background()); !ok || active != "model-b" {
		t.Errorf("Active() = %q, %v; want model-b, true", active, ok)
	}
	if n := p.callsTo("model-c", ""); n != 0 {
		t.Errorf("model-c probed %d times, want 0", n)
	}
}

func TestProbeSkipsEmptyReplies(t *testing.T) {
	p := newFakeProvider()
	p.replies["model-a"] = "  "
	p.replies["model-b"] = "OK"
	s := newTestSelector(p)

	got, err := s.Probe(context.Background())
	if err != nil || got != "model-b" {
		t.Fatalf("Probe() = %q, %v; want model-b", got, err)
	}
}

func TestProbeFailureKind(t *testing.T) {
	cred := func() error { return scanerr.New(scanerr.KindInvalidCredential, "gen", "") }
	quota := func() error { return scanerr.New(scanerr.KindQuotaExceeded, "gen", "") }
	tests := []struct {
		name string
		errs []error
		want scanerr.Kind
	}{
		{"all invalid credential", []error{cred(), cred(), cred()}, scanerr.KindInvalidCredential},
		{"all quota", []error{quota(), quota(), quota()}, scanerr.KindQuotaExceeded},
		{"mixed", []error{cred(), quota(), quota()}, scanerr.KindModelUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider()
			for i, m := range candidates {
				p.errs[m] = []error{tt.errs[i]}
			}
			_, err := newTestSelector(p).Probe(context.Background())
			if got := scanerr.KindOf(err); got != tt.want {
				t.Errorf("KindOf(Probe()) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateUsesCachedModel(t *testing.T) {
	p := newFakeProvider()
	p.replies["model-a"] = "OK"
	s := newTestSelector(p)

	for i := 0; i < 3; i++ {
		if _, _, err := s.Generate(context.Background(), core.GenerateRequest{Prompt: "summarize"}); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
	}
	if n := p.callsTo("model-a", probePrompt); n != 1 {
		t.Errorf("probe calls = %d, want 1", n)
	}
	if n := p.callsTo("model-a", "summarize"); n != 3 {
		t.Errorf("generate calls = %d, want 3", n)
	}
}

func TestGenerateReprobesOnceOnQuota(t *testing.T) {
	p := newFakeProvider()
	p.replies["model-a"] = "OK"
	p.replies["model-b"] = "OK"
	s := newTestSelector(p)
	ctx := context.Background()

	if _, err := s.Probe(ctx); err != nil {
		t.Fatal(err)
	}
	// the active model hits quota on the real request and on the re-probe
	p.errs["model-a"] = []error{
		scanerr.New(scanerr.KindQuotaExceeded, "gen", ""),
		scanerr.New(scanerr.KindQuotaExceeded, "gen", ""),
	}

	text, model, err := s.Generate(ctx, core.GenerateRequest{Prompt: "summarize"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if model != "model-b" || text != "OK" {
		t.Errorf("Generate() = %q, %q; want OK, model-b", text, model)
	}
	if n := p.callsTo("model-b", "summarize"); n != 1 {
		t.Errorf("retry calls on model-b = %d, want 1", n)
	}
	if n := p.callsTo("model-b", probePrompt); n != 1 {
		t.Errorf("re-probe calls on model-b = %d, want 1", n)
	}
	if active, _ := s.Active(ctx); active != "model-b" {
		t.Errorf("Active() = %q, want model-b", active)
	}
}

func TestGenerateReturnsOriginalErrorWhenReprobeFails(t *testing.T) {
	p := newFakeProvider()
	p.replies["model-a"] = "OK"
	s := newTestSelector(p)
	ctx := context.Background()
	if _, err := s.Probe(ctx); err != nil {
		t.Fatal(err)
	}

	original := scanerr.New(scanerr.KindQuotaExceeded, "gen", "quota")
	p.errs["model-a"] = []error{original, scanerr.New(scanerr.KindModelUnavailable, "gen", "")}
	p.errs["model-b"] = []error{scanerr.New(scanerr.KindModelUnavailable, "gen", "")}
	p.errs["model-c"] = []error{scanerr.New(scanerr.KindModelUnavailable, "gen", "")}

	_, _, err := s.Generate(ctx, core.GenerateRequest{Prompt: "summarize"})
	if err != original {
		t.Errorf("Generate() error = %v, want original quota error", err)
	}
	if _, ok := s.Active(ctx); ok {
		t.Error("cache should be empty after failed re-probe")
	}
}

func TestGenerateNonTransientPropagates(t *testing.T) {
	p := newFakeProvider()
	p.replies["model-a"] = "OK"
	s := newTestSelector(p)
	ctx := context.Background()
	if _, err := s.Probe(ctx); err != nil {
		t.Fatal(err)
	}

	p.errs["model-a"] = []error{scanerr.New(scanerr.KindContentPolicy, "gen", "blocked")}
	_, _, err := s.Generate(ctx, core.GenerateRequest{Prompt: "summarize"})
	if scanerr.KindOf(err) != scanerr.KindContentPolicy {
		t.Errorf("KindOf() = %v, want content_policy", scanerr.KindOf(err))
	}
	if n := p.callsTo("model-a", probePrompt); n != 1 {
		t.Errorf("probe calls = %d, want 1 (no re-probe)", n)
	}
}

func TestMemoryCacheInvalidateIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	if _, ok := c.Get(ctx); ok {
		t.Fatal("new cache should be empty")
	}

	c.Set(ctx, "model-b")
	c.Invalidate(ctx, "model-a")
	if got, ok := c.Get(ctx); !ok || got != "model-b" {
		t.Errorf("Get() = %q, %v; stale invalidation cleared a newer model", got, ok)
	}

	c.Invalidate(ctx, "model-b")
	if _, ok := c.Get(ctx); ok {
		t.Error("Get() after matching Invalidate should miss")
	}
}
