package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/agbru/billcheck/internal/logging"
	"github.com/agbru/billcheck/internal/metrics"
)

// Server exposes the metrics registry over HTTP while an interactive or
// batch session runs.
type Server struct {
	metrics  *metrics.Recorder
	logger   logging.Logger
	security SecurityConfig
	http     *http.Server
}

// New builds an exporter bound to addr.
func New(addr string, rec *metrics.Recorder, logger logging.Logger) *Server {
	s := &Server{metrics: rec, logger: logger, security: DefaultSecurityConfig()}
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", SecurityMiddleware(s.security, s.handleMetrics))
	mux.HandleFunc("/healthz", SecurityMiddleware(s.security, s.handleHealth))
	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start listens on the configured address and serves in the background.
// It returns once the listener is bound, so bind errors surface synchronously.
func (s *Server) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("metrics server stopped", err)
		}
	}()
	s.logger.Info("metrics server listening", logging.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.logger.Debug("rejected metrics request", logging.String("method", r.Method))
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
