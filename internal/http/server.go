// Package http exposes the ingest and reporting API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"finca/internal/log"
	"finca/internal/services"
)

type Server struct {
	http.Server
	transactions  *services.TransactionService
	reports       *services.ReportService
	defaultFarmID uuid.UUID
	logger        *log.Logger
	now           func() time.Time
}

func NewServer(addr string, transactions *services.TransactionService, reports *services.ReportService, defaultFarmID uuid.UUID, logger *log.Logger) *Server {
	s := &Server{
		transactions:  transactions,
		reports:       reports,
		defaultFarmID: defaultFarmID,
		logger:        logger.WithComponent(log.ComponentHTTP),
		now:           time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/messages", s.handleCreateMessage)
	mux.HandleFunc("/api/reports", s.handleGetReport)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      log.Middleware(s.logger)(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Shutting down HTTP server")
	return s.Server.Shutdown(ctx)
}
