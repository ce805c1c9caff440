package preview

import (
	"context"
	"net/http"
	"time"

	"course-cover-generator/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server serves the cover template and downloaded assets over localhost so
// the renderer can screenshot an http:// URL (query parameters survive,
// relative asset paths resolve), plus /metrics and /health for operators.
type Server struct {
	addr string
	dir  string
	srv  *http.Server
	log  *zerolog.Logger
}

func NewServer(cfg config.PreviewConfig, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "PreviewServer").Logger()
	return &Server{addr: cfg.Addr, dir: cfg.TemplateDir, log: &l}
}

func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/*", http.FileServer(http.Dir(s.dir)))

	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Str("addr", s.addr).Str("dir", s.dir).Msg("preview server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
