package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vidmark/vidmark/internal/auth"
	"github.com/vidmark/vidmark/internal/docs"
	"github.com/vidmark/vidmark/internal/metrics"
	"github.com/vidmark/vidmark/internal/ratelimit"
	"github.com/vidmark/vidmark/internal/timestamp"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Timestamps     *timestamp.Service
	Pinger         Pinger
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	BaseURL        string
	TokenSecret    string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	EnableDocs     bool
}

type Server struct {
	router           chi.Router
	pinger           Pinger
	logger           *slog.Logger
	metrics          *metrics.Metrics
	svc              *timestamp.Service
	timestampHandler *timestamp.Handler
	tokenSecret      string
	limiter          *ratelimit.Limiter
	enableDocs       bool
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(slogMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders(SecurityConfig{
		BaseURL:        cfg.BaseURL,
		AllowedOrigins: cfg.AllowedOrigins,
	}))
	if cfg.Metrics != nil {
		r.Use(metrics.RequestMiddleware(cfg.Metrics))
	}

	s := &Server{
		router:      r,
		pinger:      cfg.Pinger,
		logger:      logger,
		metrics:     cfg.Metrics,
		svc:         cfg.Timestamps,
		tokenSecret: cfg.TokenSecret,
		enableDocs:  cfg.EnableDocs,
	}

	if cfg.Timestamps != nil {
		s.timestampHandler = timestamp.NewHandler(cfg.Timestamps)
		if cfg.Metrics != nil {
			s.timestampHandler.SetObserver(cfg.Metrics)
		}
		if s.pinger == nil {
			s.pinger = cfg.Timestamps
		}
		if cfg.RateLimitRPS > 0 {
			s.limiter = ratelimit.NewLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		}
	}

	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the background work the server started.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	if s.enableDocs {
		s.router.Get("/api/docs/openapi.yaml", docs.HandleSpec)
	}

	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler(s.refreshGauges))
	}

	if s.timestampHandler == nil {
		return
	}

	h := s.timestampHandler
	s.router.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware)
		}
		if s.tokenSecret != "" {
			r.Use(auth.Middleware(s.tokenSecret))
		}
		r.Post("/api/messages", h.Messages)
		r.Route("/api/timestamps", func(r chi.Router) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Delete("/{index}", h.DeleteAt)
			r.Delete("/id/{id}", h.DeleteByID)
		})
		r.Get("/api/keys", h.Keys)
		r.Get("/api/videokey", h.VideoKey)
		r.Get("/api/limits", h.Limits)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.pinger != nil {
		if err := s.pinger.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unhealthy","error":"storage unreachable"}`))
			return
		}
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) refreshGauges() {
	if s.svc == nil {
		return
	}
	keys, err := s.svc.Keys(context.Background())
	if err != nil {
		return
	}
	s.metrics.SetStoredVideos(len(keys))
}
