// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/LegalScan/internal/api/handlers"
	"github.com/markdave123-py/LegalScan/internal/config"
	"github.com/markdave123-py/LegalScan/internal/core"
	"github.com/markdave123-py/LegalScan/internal/core/chat"
	db "github.com/markdave123-py/LegalScan/internal/core/database"
	"github.com/markdave123-py/LegalScan/internal/core/extraction"
	"github.com/markdave123-py/LegalScan/internal/core/llm"
	"github.com/markdave123-py/LegalScan/internal/core/narrator"
	objectclient "github.com/markdave123-py/LegalScan/internal/core/object-client"
	"github.com/markdave123-py/LegalScan/internal/core/ocr"
	"github.com/markdave123-py/LegalScan/internal/core/ocr/tesseract"
	"github.com/markdave123-py/LegalScan/internal/core/pipeline"
	"github.com/markdave123-py/LegalScan/internal/core/summarizer"
)

const (
	startupTimeout = 2 * time.Minute
	activeModelTTL = 6 * time.Hour
)

type App struct {
	Config *config.Config
	Server *Server
	Logger *slog.Logger

	scanModels *llm.ModelSelector
	chatModels *llm.ModelSelector
	closers    []io.Closer
}

// NewApp builds every collaborator from cfg. Missing optional credentials
// disable the feature that needs them rather than failing startup.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	a := &App{Config: cfg, Logger: logger}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(appCtx).Err(); err != nil {
			logger.Warn("redis unreachable, model cache falls back to memory", "addr", cfg.RedisAddr, "error", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			a.closers = append(a.closers, rdb)
			logger.Info("redis model cache ready", "addr", cfg.RedisAddr)
		}
	}
	newCache := func(name string) core.ModelCache {
		if rdb != nil {
			return llm.NewRedisCache(rdb, name, activeModelTTL, logger)
		}
		return llm.NewMemoryCache()
	}

	var err error
	a.scanModels, err = a.newSelector(appCtx, "scan", cfg.ScanAPIKey, newCache("scan"))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.chatModels, err = a.newSelector(appCtx, "chat", cfg.ChatAPIKey, newCache("chat"))
	if err != nil {
		a.Close()
		return nil, err
	}

	var scanGen summarizer.Generator
	if a.scanModels != nil {
		scanGen = a.scanModels
	}
	var chatGen chat.Generator
	if a.chatModels != nil {
		chatGen = a.chatModels
	}
	sum := summarizer.New(scanGen, cfg.ScanAPIKey != "", logger)
	assistant := chat.NewAssistant(chatGen, cfg.ChatAPIKey != "", logger)

	engine := ocr.NewEngine(tesseract.New(cfg.OCRLanguage), cfg.OCRWorkers, logger)
	extractor := extraction.NewDocumentExtractor(extraction.NewPDFTextLayer(false), engine, logger)

	var (
		pipeNarrator pipeline.Narrator
		speaker      handlers.Speaker
	)
	if cfg.NarrationEnabled() {
		n, err := a.newNarrator(appCtx)
		if err != nil {
			a.Close()
			return nil, err
		}
		pipeNarrator, speaker = n, n
	} else {
		logger.Warn("ELEVEN_LABS_API_KEY not set, narration disabled")
	}

	pipe := pipeline.New(extractor, sum, pipeNarrator, pipeline.Options{MaxUploadBytes: cfg.MaxUploadBytes}, logger)

	var vault core.VaultStore
	if cfg.DatabaseURL != "" {
		dbClient, err := db.NewDatabaseClient(appCtx, cfg, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, dbClient)
		vault = dbClient
		logger.Info("vault database initialized and ready")
	}

	deps := ServerDeps{
		Scan:      handlers.NewScanHandler(pipe, logger),
		Chat:      handlers.NewChatHandler(assistant, logger),
		Audio:     handlers.NewAudioHandler(speaker, logger),
		ChatModel: activeModel(a.chatModels),
		ScanModel: activeModel(a.scanModels),
	}
	if vault != nil {
		deps.Vault = handlers.NewVaultHandler(vault, logger)
	}
	a.Server = NewServer(cfg, deps, logger)
	return a, nil
}

func (a *App) newSelector(ctx context.Context, name, apiKey string, cache core.ModelCache) (*llm.ModelSelector, error) {
	if apiKey == "" {
		a.Logger.Warn("no API key configured", "selector", name)
		return nil, nil
	}

	var provider core.LLMProvider
	switch a.Config.LLMSDK {
	case config.SDKGenAI:
		p, err := llm.NewGenaiLLM(ctx, apiKey)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the %s model client: %w", name, err)
		}
		provider = p
	default:
		p, err := llm.NewGeminiLLM(ctx, apiKey)
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the %s model client: %w", name, err)
		}
		a.closers = append(a.closers, p)
		provider = p
	}

	return llm.NewModelSelector(name, provider, a.Config.ModelCandidates,
		llm.WithCache(cache),
		llm.WithLogger(a.Logger),
	), nil
}

func (a *App) newNarrator(ctx context.Context) (*narrator.Narrator, error) {
	cfg := a.Config
	tts := narrator.NewElevenLabsClient(narrator.ElevenLabsConfig{
		APIKey:  cfg.ElevenLabsAPIKey,
		VoiceID: cfg.ElevenLabsVoiceID,
		ModelID: cfg.ElevenLabsModelID,
		BaseURL: cfg.ElevenLabsBaseURL,
	})

	var store core.AudioStore = objectclient.NewLocalAudioStore(cfg.AudioDir)
	if cfg.S3MirrorEnabled() {
		s3, err := objectclient.NewS3Client(ctx, cfg, a.Logger)
		if err != nil {
			return nil, err
		}
		store = objectclient.NewMirroredAudioStore(store, s3, s3.Bucket(), a.Logger)
		a.Logger.Info("narration audio mirrored to s3", "bucket", s3.Bucket())
	}
	return narrator.New(tts, store, a.Logger), nil
}

// ProbeModels resolves both selectors concurrently. Failures are logged only;
// requests probe again on demand.
func (a *App) ProbeModels(ctx context.Context) {
	var g errgroup.Group
	for _, s := range []*llm.ModelSelector{a.scanModels, a.chatModels} {
		if s == nil {
			continue
		}
		g.Go(func() error {
			model, err := s.Probe(ctx)
			if err != nil {
				a.Logger.Warn("startup model probe failed", "selector", s.Name(), "error", err)
				return nil
			}
			a.Logger.Info("active model selected", "selector", s.Name(), "model", model)
			return nil
		})
	}
	_ = g.Wait()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.Logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

func activeModel(s *llm.ModelSelector) handlers.ActiveModel {
	if s == nil {
		return nil
	}
	return s
}
