package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/debate-motions/internal/motions/config"
	"github.com/yungbote/debate-motions/internal/motions/engine"
	"github.com/yungbote/debate-motions/internal/motions/engine/mock"
	"github.com/yungbote/debate-motions/internal/motions/engine/oaihttp"
	"github.com/yungbote/debate-motions/internal/motions/engine/retry"
	"github.com/yungbote/debate-motions/internal/motions/generator"
	"github.com/yungbote/debate-motions/internal/motions/httpapi"
	"github.com/yungbote/debate-motions/internal/observability"
	"github.com/yungbote/debate-motions/internal/platform/logger"
)

type App struct {
	Log       *logger.Logger
	Config    *config.Config
	Generator *generator.Generator

	server       *http.Server
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(context.Background(), cfg, log)
}

// NewWithConfig wires the service from an already loaded config.
func NewWithConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Env, cfg.Otel)

	eng, ready, err := buildEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	if !ready() {
		log.Warn("inference credential not configured; requests will fail until PERPLEXITY_API_KEY is set")
	}
	eng = retry.Wrap(eng, retry.Options{
		MaxAttempts: cfg.Engine.Retry.MaxAttempts,
		BaseDelay:   cfg.Engine.Retry.BaseDelay.Duration,
		MaxDelay:    cfg.Engine.Retry.MaxDelay.Duration,
	}, log)

	gen := generator.New(eng, generator.Options{
		Model:       cfg.Engine.Model,
		Temperature: cfg.Engine.Temperature,
		MaxTokens:   cfg.Engine.MaxTokens,
	}, log)

	srv := httpapi.NewServer(cfg, httpapi.Deps{Log: log, Generator: gen, Ready: ready})

	log.Info("app initialized", "engine", cfg.Engine.Type, "model", cfg.Engine.Model, "addr", cfg.HTTP.Addr)

	return &App{
		Log:          log,
		Config:       cfg,
		Generator:    gen,
		server:       srv,
		otelShutdown: otelShutdown,
	}, nil
}

func buildEngine(cfg config.EngineConfig) (engine.Engine, func() bool, error) {
	switch cfg.Type {
	case "mock":
		return mock.New(), func() bool { return true }, nil
	default:
		e, err := oaihttp.New(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("init inference engine: %w", err)
		}
		return e, e.Configured, nil
	}
}

// Handler exposes the HTTP surface without binding a listener.
func (a *App) Handler() http.Handler { return a.server.Handler }

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		timeout := a.Config.HTTP.ShutdownTimeout.Duration
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.Log.Warn("http shutdown failed", "error", err)
		}
		if a.otelShutdown != nil {
			if err := a.otelShutdown(shutdownCtx); err != nil {
				a.Log.Warn("otel shutdown failed", "error", err)
			}
		}
		a.Log.Sync()
		return nil
	})

	return g.Wait()
}
