// Package server exposes the area estimator, tracking sessions and the plot
// index over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kass/go-land-area/pkg/config"
	"github.com/kass/go-land-area/pkg/rtree"
	"github.com/kass/go-land-area/pkg/session"
)

// Server serves the land-area HTTP API
type Server struct {
	cfg    config.Server
	logger *zap.Logger
	plots  *rtree.PlotIndex

	mu       sync.RWMutex
	sessions map[string]*session.Session

	router *mux.Router
	now    func() time.Time
}

// New wires the routes. A nil plots index gets a fresh one.
func New(cfg config.Server, logger *zap.Logger, plots *rtree.PlotIndex) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if plots == nil {
		plots = rtree.NewPlotIndex()
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		plots:    plots,
		sessions: make(map[string]*session.Session),
		router:   mux.NewRouter(),
		now:      time.Now,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/area", s.handleArea).Methods(http.MethodPost)

	api.HandleFunc("/sessions", s.handleStartSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/fixes", s.handleRecordFixes).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/pause", s.handlePauseSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/resume", s.handleResumeSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/stop", s.handleStopSession).Methods(http.MethodPost)

	api.HandleFunc("/plots", s.handleQueryPlots).Methods(http.MethodGet)
	api.HandleFunc("/plots/nearest", s.handleNearestPlots).Methods(http.MethodGet)
	api.HandleFunc("/plots/{id}", s.handleGetPlot).Methods(http.MethodGet)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	if s.cfg.SessionTTL > 0 {
		sweepCtx, stopSweep := context.WithCancel(ctx)
		defer stopSweep()
		go s.sweepLoop(sweepCtx, s.cfg.SessionTTL)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) session(id string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) addSession(sess *session.Session) {
	s.sweepSessions()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
}

// sweepSessions drops sessions idle for longer than the configured TTL.
// Plots of stopped sessions stay in the index.
func (s *Server) sweepSessions() int {
	if s.cfg.SessionTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.cfg.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.LastActivity().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("sessions evicted", zap.Int("evicted", evicted), zap.Int("remaining", len(s.sessions)))
	}
	return evicted
}

func (s *Server) sweepLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepSessions()
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
