package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/match-feed-service/internal/app/feeds"
	"github.com/preston-bernstein/match-feed-service/internal/config"
	"github.com/preston-bernstein/match-feed-service/internal/feed"
	httpserver "github.com/preston-bernstein/match-feed-service/internal/http"
	"github.com/preston-bernstein/match-feed-service/internal/http/handlers"
	"github.com/preston-bernstein/match-feed-service/internal/http/middleware"
	"github.com/preston-bernstein/match-feed-service/internal/logging"
	"github.com/preston-bernstein/match-feed-service/internal/metrics"
	"github.com/preston-bernstein/match-feed-service/internal/settings"
	"github.com/preston-bernstein/match-feed-service/internal/store"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	gateway       store.Gateway
	feedService   *feeds.Service
	httpServer    httpServer
	metricsServer httpServer
	watcher       Watcher
	metricsStop   func(context.Context) error
	storeClose    func() error
}

// New constructs a server with the configured store backend and settings source.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(ctx, cfg, logger, nil, nil)
}

func newServerWithGateway(cfg config.Config, logger *slog.Logger, gw store.Gateway) (*Server, error) {
	return newServerWithMetrics(context.Background(), cfg, logger, gw, nil)
}

func newServerWithMetrics(ctx context.Context, cfg config.Config, logger *slog.Logger, gw store.Gateway, recorder *metrics.Recorder) (*Server, error) {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	storeClose := func() error { return nil }
	if gw == nil {
		built, cleanup, err := newGatewayFactory(logger, recorder).build(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("build store gateway: %w", err)
		}
		gw, storeClose = built, cleanup
	} else {
		gw = store.NewInstrumentedGateway(gw, recorder)
	}

	sc, err := buildSettings(cfg, logger, recorder)
	if err != nil {
		return nil, fmt.Errorf("build feed settings: %w", err)
	}

	svc := buildService(gw, sc.source, logger, recorder)
	httpSrv := buildHTTPServer(cfg, svc, logger, recorder, sc.watcher)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		gateway:       gw,
		feedService:   svc,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		watcher:       sc.watcher,
		metricsStop:   metricsShutdown,
		storeClose:    storeClose,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, svc *feeds.Service, httpSrv httpServer, w Watcher) *Server {
	return &Server{
		cfg:         cfg,
		logger:      logger,
		feedService: svc,
		httpServer:  httpSrv,
		watcher:     w,
	}
}

// buildService wires the public engine and a legacy single-query engine for internal reads.
func buildService(gw store.Gateway, source settings.Source, logger *slog.Logger, recorder *metrics.Recorder) *feeds.Service {
	engine := feed.NewEngine(gw, source, logger, recorder)
	legacy := feed.NewEngine(gw, legacySource{source}, logger, recorder)
	return feeds.NewService(engine, legacy, gw)
}

// legacySource follows the live settings but always disables grouped fetching.
type legacySource struct {
	settings.Source
}

func (l legacySource) Current() settings.Settings {
	s := l.Source.Current()
	s.ParallelFetch = false
	return s
}

func buildHTTPServer(cfg config.Config, svc *feeds.Service, logger *slog.Logger, recorder *metrics.Recorder, w Watcher) httpServer {
	var ready func() bool
	if w != nil {
		ready = w.Ready
	}

	handler := handlers.NewHandler(svc, logger, ready)
	router := httpserver.NewRouter(handler)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the settings watcher and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startWatcher(ctx)
	s.startServer(stop)

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

// startWatcher keeps serving on the startup settings when the file watch cannot be set up.
func (s *Server) startWatcher(ctx context.Context) {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Start(ctx); err != nil && s.logger != nil {
		s.logger.Warn("settings watcher failed to start, using startup settings", "error", err)
	}
}

func (s *Server) startServer(stop context.CancelFunc) {
	if s.logger != nil {
		s.logger.Info("http server starting", slog.String("addr", s.httpServer.Addr()))
	}
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	if s.logger != nil {
		s.logger.Info("metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if s.watcher != nil {
		if err := s.watcher.Stop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Error("failed to stop settings watcher", "error", err)
		}
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	if s.storeClose != nil {
		if err := s.storeClose(); err != nil && s.logger != nil {
			s.logger.Warn("store close failed", "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	if cfg.Metrics.PushEnabled() && logger != nil {
		logger.Info("exporting metrics over otlp", slog.String("endpoint", cfg.Metrics.OtlpEndpoint))
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", logging.FieldError, err)
		}
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    cfg.Metrics.Addr(),
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
