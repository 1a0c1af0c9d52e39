// Package server implements the HTTP, websocket and MCP surfaces of
// daybook serve.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wethinkt/go-daybook/internal/journal"
	"github.com/wethinkt/go-daybook/internal/stream"
	"github.com/wethinkt/go-daybook/internal/tuilog"
)

// Journal is the storage the server reads and writes.
type Journal interface {
	Days(ctx context.Context) ([]journal.DaySummary, error)
	Entries(ctx context.Context, day string) ([]journal.Entry, error)
	Append(ctx context.Context, e journal.Entry) (journal.Entry, error)
}

// Config holds server configuration.
type Config struct {
	Port int
	Host string
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		Port: 8787,
		Host: "localhost",
	}
}

// HTTPServer serves the REST API and the responder websocket.
type HTTPServer struct {
	journal   Journal
	responder stream.Responder
	router    chi.Router
	config    Config
}

// NewHTTPServer creates a server. responder may be nil, which disables
// /ws/respond.
func NewHTTPServer(j Journal, responder stream.Responder, config Config) *HTTPServer {
	s := &HTTPServer{
		journal:   j,
		responder: responder,
		config:    config,
	}
	s.router = s.setupRouter()
	return s
}

func (s *HTTPServer) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&redactingLogFormatter{
		base: &middleware.DefaultLogFormatter{Logger: requestLogger(), NoColor: true},
	}))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(instrument)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/days", s.handleGetDays)
		r.Get("/days/{day}/entries", s.handleGetEntries)
		r.Post("/days/{day}/entries", s.handlePostEntry)
	})
	r.Get("/ws/respond", s.handleRespondWS)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// requestLogger routes chi's access log into the daybook log file.
func requestLogger() *log.Logger {
	return log.New(tuilog.Log.Writer(), "", 0)
}

// Router returns the chi router.
func (s *HTTPServer) Router() chi.Router {
	return s.router
}

// Addr returns the server address.
func (s *HTTPServer) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// ListenAndServe serves until ctx is cancelled.
func (s *HTTPServer) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	if s.config.Port == 0 {
		s.config.Port = ln.Addr().(*net.TCPAddr).Port
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	tuilog.Log.Info("Server: listening", "addr", s.Addr())
	fmt.Printf("Daybook server running at http://%s\n", s.Addr())
	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// corsMiddleware adds CORS headers for local development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
