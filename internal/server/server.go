// Package server provides the HTTP REST API for the recruitment pipeline.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/recruit-pilot/internal/db"
)

// Store is the persistence surface the API reads from. Implemented by *db.DB.
type Store interface {
	CreateRun(ctx context.Context, query string, locations, sources []string) (*db.Run, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	ListRuns(ctx context.Context, limit int) ([]db.Run, error)
	DeleteRun(ctx context.Context, runID uuid.UUID) error
	ListPostingsByRun(ctx context.Context, runID uuid.UUID) ([]db.JobPosting, error)
	GetPosting(ctx context.Context, postingID uuid.UUID) (*db.JobPosting, error)
}

// Runner executes a queued run to completion
type Runner interface {
	Execute(ctx context.Context, runID uuid.UUID) error
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	store          Store
	runner         Runner
	jwtService     *JWTService
	defaultSources []string
}

// Config holds server configuration
type Config struct {
	Port           int
	JWTSecret      string
	DefaultSources []string
}

// New creates a new server instance
func New(cfg Config, store Store, runner Runner) *Server {
	s := &Server{
		store:          store,
		runner:         runner,
		defaultSources: cfg.DefaultSources,
	}

	if cfg.JWTSecret != "" {
		s.jwtService = NewJWTService(cfg.JWTSecret)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler builds the routed handler with middleware applied. Exposed so
// tests can drive the full stack without a listening socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /runs", s.handleCreateRun)
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("DELETE /runs/{id}", s.handleDeleteRun)
	mux.HandleFunc("GET /runs/{id}/postings", s.handleListPostings)
	mux.HandleFunc("GET /postings/{id}/cover-letter", s.handleGetCoverLetter)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.withLogging(s.withCORS(s.withAuth(mux)))
}

// Start begins listening for requests and blocks until shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
