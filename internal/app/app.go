// Package app is the composition root shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/reportdex/internal/config"
	"github.com/kailas-cloud/reportdex/internal/db"
	dbRedis "github.com/kailas-cloud/reportdex/internal/db/redis"
	"github.com/kailas-cloud/reportdex/internal/domain"
	"github.com/kailas-cloud/reportdex/internal/langdetect"
	"github.com/kailas-cloud/reportdex/internal/metrics"
	"github.com/kailas-cloud/reportdex/internal/repository/embcache"
	"github.com/kailas-cloud/reportdex/internal/repository/memindex"
	reportrepo "github.com/kailas-cloud/reportdex/internal/repository/report"
	searchrepo "github.com/kailas-cloud/reportdex/internal/repository/search"
	openaiEmb "github.com/kailas-cloud/reportdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/reportdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/reportdex/internal/usecase/health"
	reportuc "github.com/kailas-cloud/reportdex/internal/usecase/report"
	searchuc "github.com/kailas-cloud/reportdex/internal/usecase/search"
)

// App holds the wired services.
type App struct {
	Search  *searchuc.Service
	Reports *reportuc.Service
	Health  *healthuc.Service

	closers []func()
}

// backend is the storage side of the app: where reports are written and queries run.
type backend struct {
	repo   reportuc.Repository
	exec   searchuc.Executor
	pinger healthuc.DBPinger
	kv     db.KVStore // nil for the memory driver
	close  func()
}

// New wires storage, embedders and services from configuration and creates the report index.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	be, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{closers: []func(){be.close}}

	metrics.RegisterEmbeddingMetrics()

	var docEmb, queryEmb domain.Embedder
	var embHealth healthuc.EmbeddingChecker
	if cfg.Embedding.Enabled() {
		base, err := buildEmbedder(cfg.Embedding, cfg.Index.VectorDimensions, be.kv, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		docEmb = withInstruction(base, cfg.Embedding.DocumentInstruction)
		queryEmb = withInstruction(base, cfg.Embedding.QueryInstruction)
		embHealth = base
		logger.Info("Embedders created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Index.VectorDimensions),
		)
	} else {
		logger.Warn("Embedding provider not configured, similarity search disabled")
	}

	a.Reports = reportuc.New(be.repo, docEmb, langdetect.New(), logger).WithWorkers(cfg.Ingest.Workers)
	a.Search = searchuc.New(be.exec, queryEmb, logger, searchuc.WithExecTimeout(cfg.Search.ExecTimeout()))
	a.Health = healthuc.New(be.pinger, embHealth, logger)

	if err := a.Reports.EnsureIndex(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func newBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (backend, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		idx, err := memindex.New(cfg.Index.VectorDimensions)
		if err != nil {
			return backend{}, fmt.Errorf("create memory index: %w", err)
		}
		logger.Info("Using in-memory report index")
		return backend{
			repo:   idx,
			exec:   idx,
			pinger: idx,
			close:  func() { _ = idx.Close() },
		}, nil

	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return backend{}, fmt.Errorf("create redis store: %w", err)
		}
		timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return backend{}, fmt.Errorf("database not ready: %w", err)
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

		repo := reportrepo.New(store, cfg.Index.VectorDimensions).WithHNSW(reportrepo.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		})
		return backend{
			repo:   repo,
			exec:   searchrepo.New(store),
			pinger: store,
			kv:     store,
			close:  store.Close,
		}, nil

	default:
		return backend{}, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
// Instructions are applied on top, so the cache key includes them.
func buildEmbedder(
	cfg config.EmbeddingConfig, dims int, kv db.KVStore, logger *zap.Logger,
) (*embeddinguc.InstrumentedEmbedder, error) {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: dims,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	cached, err := embcache.New(base, kv, embcache.Options{
		MemorySize: cfg.CacheSize,
		TTL:        time.Duration(cfg.CacheTTLSec) * time.Second,
	}, metrics.EmbeddingCacheTotal, logger)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return embeddinguc.NewInstrumentedEmbedder(cached, cfg.Provider, cfg.Model, logger), nil
}

func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

// Close releases storage connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
