package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/rlmbox/api/handlers"
	"github.com/BaSui01/rlmbox/config"
	"github.com/BaSui01/rlmbox/internal/metrics"
	"github.com/BaSui01/rlmbox/sandbox"
	"github.com/BaSui01/rlmbox/session"
)

// Server wires the sandbox engine, session store, metrics, and HTTP routes.
type Server struct {
	cfg      *config.Config
	logger   *zap.Logger
	sessions session.Store
	httpSrv  *http.Server
}

// NewServer builds a fully wired server from the configuration.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	sessions, err := buildSessionStore(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to build session store: %w", err)
	}

	collector := metrics.NewCollector("rlmbox", logger)
	engine := sandbox.NewEngine(logger, sandbox.WithObserver(collector))

	executeHandler := handlers.NewExecuteHandler(engine, sessions, cfg.Sandbox, logger)
	executeHandler.SetActivityTracker(collector)

	healthHandler := handlers.NewHealthHandler(logger)
	healthHandler.RegisterCheck(handlers.StoreCheck{CheckName: "session_store", Pinger: sessions})

	mux := http.NewServeMux()
	mux.HandleFunc("/execute", executeHandler.HandleExecute)
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", healthHandler.HandleHealth)
	mux.HandleFunc("/ready", healthHandler.HandleReady)
	mux.Handle("/metrics", promhttp.Handler())

	handler := Chain(mux,
		Recovery(logger),
		RequestID(),
		RequestLogger(logger, collector),
		RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
	)

	return &Server{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		httpSrv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.HTTPPort),
			Handler:      handler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}, nil
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := s.sessions.Close(); err != nil {
		s.logger.Warn("failed to close session store", zap.Error(err))
	}
	return nil
}

func buildSessionStore(cfg config.SessionConfig) (session.Store, error) {
	switch cfg.Backend {
	case "redis":
		return session.NewRedisStore(session.RedisOptions{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			PoolSize:  cfg.Redis.PoolSize,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.TTL,
		})
	default:
		return session.NewMemoryStore(), nil
	}
}
