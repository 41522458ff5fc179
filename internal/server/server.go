package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/ziadkadry99/vibe-studio/internal/history"
	"github.com/ziadkadry99/vibe-studio/internal/hub"
	"github.com/ziadkadry99/vibe-studio/internal/pages"
	"github.com/ziadkadry99/vibe-studio/internal/playback"
	"github.com/ziadkadry99/vibe-studio/internal/render"
	"github.com/ziadkadry99/vibe-studio/internal/route"
	"github.com/ziadkadry99/vibe-studio/internal/search"
	"github.com/ziadkadry99/vibe-studio/internal/studio"
)

// Config holds server configuration.
type Config struct {
	Port      int
	BaseURL   string  // origin for publish links; empty means the request's origin
	AllowAll  bool    // allow all CORS origins (dev mode)
	RateLimit float64 // API requests per second per client; 0 disables
	RateBurst int
	MaxUpload int64 // multipart memory limit for project uploads, in bytes
}

// Server serves the editor shell, published pages and the studio API.
type Server struct {
	cfg        Config
	shell      *studio.Shell
	history    *history.Store
	index      *search.Index
	renderer   *render.Renderer
	resolver   *route.Resolver
	hub        *hub.Hub
	log        *logrus.Logger
	router     chi.Router
	httpServer *http.Server
}

// New wires the studio into a router. hist and index may be nil, in which
// case their endpoints are not mounted.
func New(cfg Config, shell *studio.Shell, hist *history.Store, index *search.Index, log *logrus.Logger) (*Server, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = 32 << 20
	}

	renderer, err := render.New()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		shell:    shell,
		history:  hist,
		index:    index,
		renderer: renderer,
		resolver: route.NewResolver(shell.Registry()),
		log:      log,
	}
	s.hub = hub.NewHub(func() any { return shell.State() }, log)

	shell.Pages().Subscribe(func(pages.Event) { s.hub.Notify(hub.EventPages) })
	shell.Engine().Subscribe(func(playback.State) { s.hub.Notify(hub.EventPlayback) })
	shell.OnPreview(func(bool) { s.hub.Notify(hub.EventPreview) })

	s.router = s.buildRouter()
	return s, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	registerViews(r, s)

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(RateLimit(s.cfg.RateLimit, s.cfg.RateBurst))
		}
		registerAPI(r, s)
		if s.history != nil {
			history.RegisterRoutes(r, s.history)
		}
		if s.index != nil {
			search.RegisterRoutes(r, s.index)
		}
	})

	r.Get("/ws/studio", s.hub.ServeWS)

	// Everything else is a document load: the editor shell or a
	// published page.
	r.Get("/", s.handleDocument)
	r.Get("/*", s.handleDocument)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Hub returns the websocket hub. It must be running for clients to be
// served; Run starts it.
func (s *Server) Hub() *hub.Hub { return s.hub }

// Shell returns the studio shell the server drives.
func (s *Server) Shell() *studio.Shell { return s.shell }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Run starts the hub and listens on the configured port until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.log.WithField("addr", addr).Info("vibestudio listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// origin returns the scheme and host publish links are built on.
func (s *Server) origin(r *http.Request) string {
	if s.cfg.BaseURL != "" {
		return s.cfg.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + r.Host
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	res, err := s.resolver.Resolve(r.Context(), r.URL.EscapedPath())
	if err != nil {
		s.log.WithError(err).Error("resolving published route")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	switch res.Kind {
	case route.KindPublished:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.renderer.Published(w, res.Name, res.HTML); err != nil {
			s.log.WithError(err).WithField("name", res.Name).Error("rendering published page")
		}
	case route.KindNotPublished:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		if err := s.renderer.NotPublished(w, res.Name); err != nil {
			s.log.WithError(err).WithField("name", res.Name).Error("rendering not-published page")
		}
	default:
		s.renderer.Shell(w)
	}
}
