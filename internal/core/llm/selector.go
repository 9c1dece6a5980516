package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/scanerr"
	"github.com/markdave123-py/LegalScan/internal/logging"
)

const (
	DefaultProbeTimeout = 10 * time.Second
	probePrompt         = "Say OK"
	noModelDetail       = "No Gemini model is available. Check your API key and quota."
)

// ModelSelector picks a working backend model from an ordered candidate list
// and keeps it in a cache. One selector exists per credential.
type ModelSelector struct {
	name         string
	provider     core.LLMProvider
	candidates   []string
	cache        core.ModelCache
	probeTimeout time.Duration
	logger       *slog.Logger
}

type SelectorOption func(*ModelSelector)

func WithCache(c core.ModelCache) SelectorOption {
	return func(s *ModelSelector) { s.cache = c }
}

func WithProbeTimeout(d time.Duration) SelectorOption {
	return func(s *ModelSelector) { s.probeTimeout = d }
}

func WithLogger(l *slog.Logger) SelectorOption {
	return func(s *ModelSelector) { s.logger = l }
}

func NewModelSelector(name string, provider core.LLMProvider, candidates []string, opts ...SelectorOption) *ModelSelector {
	s := &ModelSelector{
		name:         name,
		provider:     provider,
		candidates:   append([]string(nil), candidates...),
		cache:        NewMemoryCache(),
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.Component(s.logger, "selector").With("selector", name)
	return s
}

func (s *ModelSelector) Name() string { return s.name }

// Active returns the cached model without probing.
func (s *ModelSelector) Active(ctx context.Context) (string, bool) {
	return s.cache.Get(ctx)
}

// Probe tries each candidate in order with a trivial prompt and caches the
// first one that answers.
func (s *ModelSelector) Probe(ctx context.Context) (string, error) {
	var errs []error
	for _, model := range s.candidates {
		pctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
		text, err := s.provider.Generate(pctx, model, core.GenerateRequest{Prompt: probePrompt})
		cancel()

		if err == nil && strings.TrimSpace(text) != "" {
			s.cache.Set(ctx, model)
			s.logger.Info("model available", "model", model)
			return model, nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("probe %s: %w", s.name, ctx.Err())
		}
		if err == nil {
			err = fmt.Errorf("%s: empty reply", model)
		}
		s.logger.Debug("model probe failed", "model", model, "error", err)
		errs = append(errs, err)
	}
	return "", probeFailure(s.name, errs)
}

// probeFailure keeps the kind when every candidate failed the same way, so a
// bad key still reads as a credential problem.
func probeFailure(name string, errs []error) error {
	op := "probe " + name
	if len(errs) == 0 {
		return scanerr.New(scanerr.KindModelUnavailable, op, noModelDetail)
	}
	kind := scanerr.KindOf(errs[0])
	for _, err := range errs[1:] {
		if scanerr.KindOf(err) != kind {
			kind = scanerr.KindModelUnavailable
			break
		}
	}
	switch kind {
	case scanerr.KindInvalidCredential, scanerr.KindQuotaExceeded, scanerr.KindContentPolicy:
	default:
		kind = scanerr.KindModelUnavailable
	}
	return scanerr.Wrap(kind, op, noModelDetail, errors.Join(errs...))
}

// Generate runs req on the active model, probing first if there is none. A
// transient failure invalidates the model, re-probes once and retries once.
// When the re-probe finds nothing the original error is returned.
func (s *ModelSelector) Generate(ctx context.Context, req core.GenerateRequest) (text, model string, err error) {
	model, ok := s.Active(ctx)
	if !ok {
		s.logger.Info("probing for available model")
		if model, err = s.Probe(ctx); err != nil {
			return "", "", err
		}
	}

	text, err = s.provider.Generate(ctx, model, req)
	if err == nil {
		return text, model, nil
	}
	if !scanerr.IsTransient(err) {
		return "", model, err
	}

	s.logger.Warn("active model failed, re-probing", "model", model, "kind", scanerr.KindOf(err).String())
	s.cache.Invalidate(ctx, model)

	next, perr := s.Probe(ctx)
	if perr != nil {
		s.logger.Warn("re-probe found no model", "error", perr)
		return "", model, err
	}
	text, err = s.provider.Generate(ctx, next, req)
	if err != nil {
		return "", next, err
	}
	return text, next, nil
}
