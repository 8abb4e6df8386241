// package server contains middleware & handlers for the catalog web service
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/services"
	"github.com/desertthunder/discography/internal/shared"
	"github.com/desertthunder/discography/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, authentication, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Route is one method and path pattern served by a [Handler].
type Route struct {
	Method     string
	Path       string
	Handler    http.HandlerFunc
	Auth       bool         // requires a valid session
	Capability string       // requires a session granting this capability; implies Auth
	Middleware []Middleware // applied inside the router's middleware, outside the guard
}

// Handler defines the interface for HTTP request handlers in the catalog service.
// Implementations group related endpoints (genres, artists, playlists, auth, ...).
type Handler interface {
	Routes() []Route // Routes returns the routes this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server is the catalog HTTP server.
type Server struct {
	router *BasicRouter
	http   *http.Server
	logger *log.Logger
}

// New wires every handler onto a router guarded by the session verifier of svc.Auth.
func New(cfg shared.ServerConfig, catalog *models.Catalog, svc *services.Services, logger *log.Logger) *Server {
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))
	router.Guard(Authenticate(svc.Auth.Sessions(), logger))

	var login *rate.Limiter
	if cfg.LoginRate > 0 {
		login = rate.NewLimiter(rate.Limit(cfg.LoginRate), max(cfg.LoginBurst, 1))
	}

	router.Handler(&AuthHandler{auth: svc.Auth, limiter: login, logger: logger})
	router.Handler(&CatalogHandler{svc: svc, logger: logger})
	router.Handler(&PlaylistHandler{playlists: svc.Playlists, logger: logger})
	router.Handler(&StatsHandler{stats: svc.Stats, logger: logger})
	router.Handler(&AdminHandler{backend: catalog.Backend, reconciler: tasks.NewReconciler(catalog, logger), logger: logger})

	return &Server{
		router: router,
		logger: logger,
		http: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout.Duration,
			WriteTimeout: cfg.WriteTimeout.Duration,
		},
	}
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errc <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	s.logger.Info("shutting down")
	if err := s.http.Shutdown(shutdown); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
