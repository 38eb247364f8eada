// Package server provides the HTTP server for the game detector.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ayusman/gamesight/internal/app"
	"github.com/ayusman/gamesight/internal/server/api"
)

// DefaultRequestTimeout applies when Config.RequestTimeout is zero.
const DefaultRequestTimeout = 30 * time.Second

// Config holds the server configuration.
type Config struct {
	App            *app.App
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Server represents the HTTP server for the detector.
type Server struct {
	config     Config
	router     chi.Router
	start      time.Time
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}
	if config.App == nil {
		config.App = app.New(app.Config{Logger: config.Logger})
	}

	s := &Server{
		config: config,
		router: chi.NewRouter(),
		start:  time.Now(),
		logger: config.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	a := s.config.App

	// The relay socket is long-lived and must stay outside the request timeout.
	if hub := a.Relay(); hub != nil {
		r.Get("/api/relay", hub.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.config.RequestTimeout))

		r.Get("/health", s.handleHealth)
		r.Get("/api/health", s.handleHealth)

		detect := api.NewDetectHandler(a)
		r.Post("/detect", detect.Image)
		r.Post("/detect/window-title", detect.WindowTitle)

		detections := api.NewDetectionsHandler(a)
		settings := api.NewSettingsHandler(a)

		r.Route("/api", func(r chi.Router) {
			r.Get("/state", detections.State)
			r.Get("/detections", detections.List)
			r.Get("/detections/{id}", detections.Get)

			r.Get("/settings/notifications", settings.GetNotifications)
			r.Put("/settings/notifications", settings.PutNotifications)

			if hub := a.Relay(); hub != nil {
				relayHandler := api.NewRelayHandler(hub)
				r.Post("/relay/commands", relayHandler.Command)
				r.Post("/relay/animation", relayHandler.Animation)
				r.Post("/relay/speak", relayHandler.Speak)
			}
		})
	})
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Templates int    `json:"templates"`
	Listeners int    `json:"listeners"`
}

// handleHealth handles GET requests to /health and /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	a := s.config.App
	response := healthResponse{
		Status:    "healthy",
		Uptime:    time.Since(s.start).Round(time.Second).String(),
		Templates: a.TemplateCount(),
	}
	if hub := a.Relay(); hub != nil {
		response.Listeners = hub.Count()
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(started),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe starts the HTTP server on addr and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if hub := s.config.App.Relay(); hub != nil {
		hub.Close()
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
