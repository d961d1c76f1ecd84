package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/snarg/clipcast"
	"github.com/snarg/clipcast/internal/config"
	"github.com/snarg/clipcast/internal/metrics"
	"github.com/snarg/clipcast/internal/pronounce"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

func NewServer(cfg *config.Config, catalog *pronounce.Catalog, deps pronounce.Deps, version string, startTime time.Time, log zerolog.Logger) *Server {
	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(log))
	r.Use(CORS)
	r.Use(metrics.InstrumentHandler)

	health := NewHealthHandler(deps.Converter, cfg.ClipDir, deps.Yandex != nil, version, startTime)
	clips := NewClipsHandler(catalog, cfg.ClipDir)
	providers := NewProvidersHandler(catalog)

	r.Route("/api/v1", func(r chi.Router) {
		// Health and the API description stay reachable without a token
		r.Get("/health", health.ServeHTTP)
		r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			w.Write(clipcast.OpenAPISpec)
		})

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(cfg.AuthToken))
			providers.Routes(r)
			clips.Routes(r)
		})
	})

	// Prometheus scrape endpoint
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return &Server{
		http: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
