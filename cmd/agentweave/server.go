package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BaSui01/agentweave/agent"
	"github.com/BaSui01/agentweave/api/handlers"
	"github.com/BaSui01/agentweave/config"
	"github.com/BaSui01/agentweave/internal/database"
	"github.com/BaSui01/agentweave/internal/metrics"
	"github.com/BaSui01/agentweave/internal/server"
	"github.com/BaSui01/agentweave/store"
	"github.com/BaSui01/agentweave/workflow"
)

// Server wires the agentweave service together: database pool, repository,
// handle cache, orchestrator, HTTP handlers, and the metrics listener.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	pool        *database.PoolManager
	handleCache *agent.HandleCache

	httpManager    *server.Manager
	metricsManager *server.Manager

	metricsCollector *metrics.Collector
}

// NewServer creates a server from config.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// Start brings all components up.
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector("agentweave", prometheus.DefaultRegisterer, s.logger)

	db, err := openDatabase(s.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	s.pool, err = database.NewPoolManager(db, s.cfg.Database.Pool, s.logger)
	if err != nil {
		return fmt.Errorf("failed to init database pool: %w", err)
	}

	repo := store.NewRepository(s.pool.DB(), s.logger)

	if s.cfg.Cache.Enabled {
		s.handleCache, err = agent.NewHandleCache(s.cfg.Cache.CacheConfig, s.logger)
		if err != nil {
			// The cache is an optimization; the service runs without it.
			s.logger.Warn("handle cache unavailable, continuing without it", zap.Error(err))
			s.handleCache = nil
		}
	}

	directory := agent.NewDirectory(repo, s.handleCache, s.metricsCollector, s.logger)
	invoker := agent.NewHTTPInvoker(s.cfg.Agents, s.logger)

	orchestrator := workflow.NewOrchestrator(workflow.Options{
		Repository: repo,
		Directory:  directory,
		Invoker:    invoker,
		Scope: func(ctx context.Context) workflow.Repository {
			return repo.WithSession(ctx)
		},
		Metrics: s.metricsCollector,
		Logger:  s.logger,
	})

	mux := http.NewServeMux()
	handlers.NewWorkflowHandler(orchestrator, s.logger).Register(mux)
	handlers.NewHealthHandler(s.pool, Version, s.logger).Register(mux)

	httpCfg := s.cfg.Server.HTTP
	httpCfg.Addr = fmt.Sprintf(":%d", s.cfg.Server.HTTPPort)
	s.httpManager = server.NewManager(s.instrument(mux), httpCfg, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsCfg := server.DefaultConfig()
	metricsCfg.Addr = fmt.Sprintf(":%d", s.cfg.Server.MetricsPort)
	s.metricsManager = server.NewManager(metricsMux, metricsCfg, s.logger)
	if err := s.metricsManager.Start(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	go s.reportPoolStats()

	s.logger.Info("all servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Bool("handle_cache", s.handleCache != nil),
	)

	return nil
}

// WaitForShutdown blocks until a shutdown signal, then stops everything.
func (s *Server) WaitForShutdown() {
	s.httpManager.WaitForShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("metrics server shutdown failed", zap.Error(err))
		}
	}
	if s.handleCache != nil {
		if err := s.handleCache.Close(); err != nil {
			s.logger.Error("handle cache close failed", zap.Error(err))
		}
	}
	if s.pool != nil {
		if err := s.pool.Close(); err != nil {
			s.logger.Error("database pool close failed", zap.Error(err))
		}
	}
}

// instrument records request metrics around the mux.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metricsCollector.RecordHTTPRequest(r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// reportPoolStats feeds connection pool gauges once a minute.
func (s *Server) reportPoolStats() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if !s.httpManager.IsRunning() {
			return
		}
		stats := s.pool.Stats()
		s.metricsCollector.RecordDBConnections(s.cfg.Database.Driver, stats.OpenConnections, stats.Idle)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// openDatabase opens the configured GORM dialect.
func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}
