package trader

import (
	"context"
	"fmt"
	"net/http"

	"galachain-trade-bot-go/internal/ledger"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// APIServer provides an HTTP interface over the lifecycle manager and the
// transaction ledger.
type APIServer struct {
	server  *http.Server
	manager *Manager
	ledger  *ledger.Ledger
	logger  *zap.Logger
}

// NewAPIServer creates a new APIServer on the configured port.
func NewAPIServer(manager *Manager, l *ledger.Ledger, port int, logger *zap.Logger) *APIServer {
	s := &APIServer{
		manager: manager,
		ledger:  l,
		logger:  logger.Named("api-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/transactions", s.transactionsHandler)
	mux.HandleFunc("/results", s.resultsHandler)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.manager.Status())
}

func (s *APIServer) transactionsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.ledger.Records(50))
}

func (s *APIServer) resultsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.manager.sctx.Results.Recent(50))
}

func (s *APIServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
