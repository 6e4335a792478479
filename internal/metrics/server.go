package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Health statuses, from best to worst.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

var statusRank = map[string]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

// ComponentHealth is one component's entry in the /health response.
type ComponentHealth struct {
	Status  string `json:"status"`
	Details any    `json:"details,omitempty"`
}

// HealthFunc reports a component's current health.
type HealthFunc func() ComponentHealth

// Server serves /health and the Prometheus scrape endpoint.
type Server struct {
	addr     string
	path     string
	registry *prometheus.Registry
	logger   *slog.Logger

	mu         sync.RWMutex
	components map[string]HealthFunc

	srv      *http.Server
	listener net.Listener
}

// NewServer creates a server listening on port. The scrape endpoint is
// served at path.
func NewServer(port int, path string, registry *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = "/metrics"
	}

	s := &Server{
		addr:       fmt.Sprintf(":%d", port),
		path:       path,
		registry:   registry,
		logger:     logger,
		components: make(map[string]HealthFunc),
	}
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// AddComponent registers a health source under name.
func (s *Server) AddComponent(name string, fn HealthFunc) {
	s.mu.Lock()
	s.components[name] = fn
	s.mu.Unlock()
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := struct {
		Status     string                     `json:"status"`
		Components map[string]ComponentHealth `json:"components"`
	}{
		Status:     StatusHealthy,
		Components: make(map[string]ComponentHealth),
	}

	s.mu.RLock()
	names := make([]string, 0, len(s.components))
	for name := range s.components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := s.components[name]()
		health.Components[name] = c
		if statusRank[c.Status] > statusRank[health.Status] {
			health.Status = c.Status
		}
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if health.Status == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// Listen binds the listening socket.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting metrics server", "addr", s.Addr(), "path", s.path)
		errCh <- s.srv.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	s.logger.Info("metrics server stopped")
	return nil
}
