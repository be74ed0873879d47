// Package server exposes grid conversion and queries over HTTP, with a
// websocket stream of conversion progress.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Options configures a Server.
type Options struct {
	AllowedOrigins []string
	CacheSize      int
	MaxUploadBytes int64
	// MaxCells bounds the voxel count of a converted grid.
	MaxCells uint64
	Workers  int
}

// Server serves the grid API.
type Server struct {
	options Options
	store   *Store
	hub     *Hub
	logger  *slog.Logger
	handler http.Handler
}

// New creates a server. The hub does not run until Run or RunHub is called.
func New(options Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if options.CacheSize <= 0 {
		options.CacheSize = 16
	}
	if options.MaxUploadBytes <= 0 {
		options.MaxUploadBytes = 64 << 20
	}
	if options.MaxCells == 0 {
		options.MaxCells = 1 << 30
	}
	if len(options.AllowedOrigins) == 0 {
		options.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		options: options,
		store:   NewStore(options.CacheSize),
		hub:     NewHub(logger),
		logger:  logger,
	}

	r := mux.NewRouter()

	// API 路由
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/convert", s.convertHandler).Methods("POST")
	api.HandleFunc("/grids/{id}", s.getGridHandler).Methods("GET")
	api.HandleFunc("/grids/{id}", s.deleteGridHandler).Methods("DELETE")
	api.HandleFunc("/grids/{id}/occupied", s.occupiedHandler).Methods("GET")
	api.HandleFunc("/grids/{id}/world-occupied", s.worldOccupiedHandler).Methods("GET")
	api.HandleFunc("/grids/{id}/path", s.pathHandler).Methods("POST")
	api.HandleFunc("/grids/{id}/export", s.exportHandler).Methods("GET")
	api.HandleFunc("/stats", s.statsHandler).Methods("GET")
	api.HandleFunc("/progress", s.hub.ServeWs)

	// 配置CORS
	c := cors.New(cors.Options{
		AllowedOrigins: options.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	s.handler = c.Handler(r)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Store() *Store {
	return s.store
}

// RunHub runs the progress hub until ctx is done.
func (s *Server) RunHub(ctx context.Context) {
	s.hub.Run(ctx)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.RunHub(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
