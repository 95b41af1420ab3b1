package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ctxlaunch/ctxlaunch/internal/launcher"
	"github.com/ctxlaunch/ctxlaunch/internal/storage"
)

// Server exposes the launcher to local hosts over HTTP: catalog listing,
// command assembly, provisioning, history, and a websocket event stream.
type Server struct {
	launcher *launcher.Launcher
	store    storage.Store
	events   *EventHub
	router   chi.Router
	http     *http.Server
}

// New creates a new Server. The returned EventHub should be wired to the
// provisioner's OnEvent callback by the caller.
func New(l *launcher.Launcher, store storage.Store, events *EventHub) *Server {
	s := &Server{
		launcher: l,
		store:    store,
		events:   events,
		router:   chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)

		r.Get("/servers", s.handleListServers)
		r.Get("/servers/{name}/command", s.handleCommand)
		r.Post("/servers/{name}/provision", s.handleProvision)

		r.Get("/history/provisions", s.handleListProvisions)
		r.Get("/history/launches", s.handleListLaunches)

		// WebSocket (no JSON content-type)
		r.Get("/events", s.handleEvents)
	})
}

// jsonContentType sets Content-Type to application/json for API routes.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Handler returns the server's HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening on the given port.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	log.Printf("ctxlaunch control API on http://%s", addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")
	s.events.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}
