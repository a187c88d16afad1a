package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"cofoundr/artifacts"
	"cofoundr/state"
	"cofoundr/types"
	"cofoundr/workflow"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultShutdownTimeout bounds graceful shutdown
const DefaultShutdownTimeout = 10 * time.Second

// Server exposes the workflow over HTTP
type Server struct {
	runner    *workflow.Runner
	store     *state.Store
	artifacts artifacts.Store
	registry  *prometheus.Registry
	logger    *zap.Logger

	shutdownTimeout time.Duration

	// background step runs
	runCtx     context.Context
	cancelRuns context.CancelFunc
	runs       sync.WaitGroup

	mu      sync.Mutex
	running map[types.Step]bool
	closed  bool
}

// Option configures a Server
type Option func(*Server)

// WithArtifacts sets the store artifact downloads are read from
func WithArtifacts(a artifacts.Store) Option {
	return func(s *Server) { s.artifacts = a }
}

// WithRegistry sets the registry served on /metrics
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithLogger sets the server logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// NewServer creates a server driving runner
func NewServer(runner *workflow.Runner, opts ...Option) *Server {
	runCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		runner:          runner,
		store:           runner.Store(),
		registry:        prometheus.NewRegistry(),
		logger:          zap.NewNop(),
		shutdownTimeout: DefaultShutdownTimeout,
		runCtx:          runCtx,
		cancelRuns:      cancel,
		running:         make(map[types.Step]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router constructs a Gin engine with registered routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	s.registerHealthRoutes(r)
	s.registerWorkflowRoutes(r)
	s.registerArtifactRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully and
// waits for step runs it started
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.Close()
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	err := httpServer.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close cancels step runs started by the server and waits for them. No run
// starts once Close has been called.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancelRuns()
	s.runs.Wait()
}

var (
	errRunInProgress = errors.New("run already in progress")
	errServerClosed  = errors.New("server is shutting down")
)

// launch starts step in the background unless a run of it is already in
// flight or the server is closed.
func (s *Server) launch(step types.Step, run func(ctx context.Context) error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errServerClosed
	}
	if s.running[step] || s.store.Status(step) == types.StatusLoading {
		s.mu.Unlock()
		return errRunInProgress
	}
	s.running[step] = true
	s.runs.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.runs.Done()
		defer func() {
			s.mu.Lock()
			delete(s.running, step)
			s.mu.Unlock()
		}()
		if err := run(s.runCtx); err != nil {
			s.logger.Debug("background step finished with error", zap.String("step", string(step)), zap.Error(err))
		}
	}()
	return nil
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
