// Package api is the locatew search server: a read-only HTTP front end over
// the path database.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const defaultShutdownTimeout = 5 * time.Second

// NewRouter builds the HTTP routes for server
func NewRouter(server *Server) http.Handler {
	r := chi.NewRouter()
	m := server.metrics

	r.Use(middleware.RequestID)
	r.Use(requestLogger(server.logger))
	r.Use(middleware.Recoverer)

	origins := server.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if server.config.APIKey != "" {
			r.Use(apiKeyMiddleware(server.config.APIKey))
		}

		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))
		r.Get("/search", m.InstrumentHandler("GET", "/api/v1/search", server.handleSearch))
		r.Get("/stats", m.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
		r.Get("/history", m.InstrumentHandler("GET", "/api/v1/history", server.handleHistory))
	})

	return r
}

// StartServer serves until ctx is canceled, then shuts down gracefully
func StartServer(ctx context.Context, server *Server) error {
	srv := &http.Server{
		Addr:              server.config.Addr(),
		Handler:           NewRouter(server),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info().Str("addr", srv.Addr).Msg("starting search server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	timeout := server.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	server.logger.Info().Msg("shutting down search server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "listen")
	}
	return nil
}
