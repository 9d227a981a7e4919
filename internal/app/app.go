package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"storyweaver/internal/config"
	"storyweaver/internal/feed"
	"storyweaver/internal/infrastructure/httpapi"
	"storyweaver/internal/infrastructure/llm"
	"storyweaver/internal/infrastructure/scheduler"
	"storyweaver/internal/infrastructure/storage"
	"storyweaver/internal/logging"
	"storyweaver/internal/ports"
	"storyweaver/internal/story"
	"storyweaver/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	server  *httpapi.Server
	refresh *usecase.RefreshScheduler
	logger  *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	parser := feed.NewParser(
		&http.Client{Timeout: cfg.Feeds.FetchTimeout()},
		baseLogger.With("component", "feed.parser"),
	)
	aggregator := feed.NewAggregator(
		parser,
		cfg.Feeds.Sources,
		cfg.Feeds.FetchTimeout(),
		baseLogger.With("component", "feed.aggregator"),
	)

	var store ports.ArticleStore
	if cfg.Database.DSN != "" {
		db, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			baseLogger.Error("database unavailable, continuing without persistence", "error", err)
		} else {
			store = storage.NewPostgresStore(db)
		}
	}

	var chatClient ports.ChatClient
	if cfg.OpenAI.APIKey != "" {
		chatClient = llm.NewClient(cfg.OpenAI, baseLogger.With("component", "llm"))
	} else {
		baseLogger.Warn("OPENAI_API_KEY is not set, story generation is disabled")
	}

	feeds := usecase.NewFeedPipeline(usecase.FeedPipelineDeps{
		Aggregator: aggregator,
		Store:      store,
		Logger:     baseLogger.With("component", "feed.pipeline"),
	})
	stories := usecase.NewStoryPipeline(usecase.StoryPipelineDeps{
		Chat:    chatClient,
		Prompts: story.NewPromptLoader(cfg.Prompts.Dir, baseLogger.With("component", "prompts")),
		Logger:  baseLogger.With("component", "story.pipeline"),
	})

	var refresh *usecase.RefreshScheduler
	if interval := cfg.Feeds.Refresh.Interval(); interval > 0 {
		refresh = usecase.NewRefreshScheduler(
			scheduler.NewTickerScheduler(interval),
			feeds,
			cfg.Feeds.Refresh.Limit,
			baseLogger.With("component", "refresh.scheduler"),
		)
	}

	server := httpapi.NewServer(feeds, stories, cfg.Feeds.Refresh.Key, baseLogger.With("component", "http"))

	return &Application{
		cfg:     cfg,
		server:  server,
		refresh: refresh,
		logger:  baseLogger,
	}
}

// Run serves HTTP until ctx is cancelled, starting the background refresh
// when one is configured.
func (a *Application) Run(ctx context.Context) error {
	if a.refresh != nil {
		if err := a.refresh.Start(ctx); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
		errCh <- a.server.Start(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.refresh != nil {
		if err := a.refresh.Stop(shutdownCtx); err != nil {
			a.logger.Warn("refresh scheduler stop failed", "error", err)
		}
	}

	return a.server.Shutdown(shutdownCtx)
}
