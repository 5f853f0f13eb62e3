package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vigiamx/mediawatch/internal/api"
	"github.com/vigiamx/mediawatch/internal/config"
	"github.com/vigiamx/mediawatch/internal/infrastructure/feed"
	"github.com/vigiamx/mediawatch/internal/infrastructure/nlp"
	"github.com/vigiamx/mediawatch/internal/infrastructure/scheduler"
	"github.com/vigiamx/mediawatch/internal/infrastructure/scrape"
	"github.com/vigiamx/mediawatch/internal/infrastructure/storage"
	"github.com/vigiamx/mediawatch/internal/logging"
	"github.com/vigiamx/mediawatch/internal/ports"
	"github.com/vigiamx/mediawatch/internal/usecase"
)

// Application wires configuration to components and owns their lifecycle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	server    *http.Server
	scheduler ports.Scheduler
	batch     *usecase.Batch
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	campaignStore := storage.NewCampaignStorage(db)
	articleStore := storage.NewArticleStorage(db)
	linkStore := storage.NewSocialLinkStorage(db)

	enricher := usecase.NewEnricher(usecase.EnricherDeps{
		Feed:     feed.NewGoogleNews(cfg.Feed.Timeout(), baseLogger.With("component", "feed")),
		Meta:     scrape.NewExtractor(cfg.Scrape.Timeout(), cfg.Scrape.UserAgent),
		Analyzer: nlp.New(cfg.OpenAI, baseLogger.With("component", "nlp")),
		Articles: articleStore,
		Links:    linkStore,
		Defaults: usecase.FeedDefaults{
			MaxResults: cfg.Feed.MaxResults,
			WindowDays: cfg.Feed.WindowDays,
			Lang:       cfg.Feed.Lang,
			Country:    cfg.Feed.Country,
		},
		LinkWorkers: cfg.Batch.LinkWorkers,
		Logger:      baseLogger.With("component", "enricher"),
	})

	batch := usecase.NewBatch(
		campaignStore,
		enricher,
		cfg.Batch.CampaignConcurrency,
		baseLogger.With("component", "batch"),
	)

	handler := api.NewHandler(
		campaignStore,
		articleStore,
		linkStore,
		enricher,
		baseLogger.With("component", "api"),
	)

	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		server: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		scheduler: scheduler.NewDaily(
			cfg.Scheduler.DailyAt,
			cfg.Scheduler.Location(),
			baseLogger.With("component", "scheduler"),
		),
		batch: batch,
	}, nil
}

// Run starts the daily trigger and the HTTP listener, then blocks until the
// context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx, func(t time.Time) {
		if _, err := a.batch.Run(ctx, t); err != nil {
			a.logger.Error("batch run failed", "error", err)
		}
	}); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http listener started", "addr", a.cfg.HTTP.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.scheduler.Stop(shutdownCtx)
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
