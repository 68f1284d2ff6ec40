// Package server provides the HTTP JSON API consumed by the web client:
// auth, work-order submission and retrieval, PDF upload, and export.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/joseph-ayodele/workorder-tracker/internal/auth"
	"github.com/joseph-ayodele/workorder-tracker/internal/export"
	"github.com/joseph-ayodele/workorder-tracker/internal/pipeline"
	"github.com/joseph-ayodele/workorder-tracker/internal/repository"
)

// Server wires the HTTP surface over the pipeline and the store.
type Server struct {
	httpServer *http.Server
	auth       *auth.Service
	workOrders repository.WorkOrderRepository
	processor  *pipeline.Processor
	exporter   *export.Service
	validate   *validator.Validate
	logger     *slog.Logger
}

// New builds the server and its routes.
func New(addr string, authSvc *auth.Service, workOrders repository.WorkOrderRepository, processor *pipeline.Processor, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		auth:       authSvc,
		workOrders: workOrders,
		processor:  processor,
		exporter:   exporter,
		validate:   validator.New(),
		logger:     logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/workorders", s.requireAuth(s.handleListWorkOrders))
	mux.HandleFunc("POST /api/workorders", s.requireAuth(s.handleCreateWorkOrder))
	mux.HandleFunc("POST /api/workorders/upload", s.requireAuth(s.handleUploadWorkOrder))
	mux.HandleFunc("GET /api/workorders/export", s.requireAuth(s.handleExportWorkOrders))
	mux.HandleFunc("GET /api/workorders/{id}", s.requireAuth(s.handleGetWorkOrder))

	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server.listening", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
