package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/memora-app/memora/pkg/usecase"
	"github.com/memora-app/memora/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/containers", func(r chi.Router) {
			r.Post("/", s.createContainer)
			r.Get("/", s.listContainers)

			r.Route("/{containerID}", func(r chi.Router) {
				r.Get("/", s.getContainer)
				r.Delete("/", s.deleteContainer)
				r.Get("/search", s.search)

				r.Route("/sources", func(r chi.Router) {
					r.Get("/", s.listSources)
					r.Post("/text", s.ingestText)
					r.Post("/media", s.ingestMedia)

					r.Route("/{sourceID}", func(r chi.Router) {
						r.Get("/", s.getSource)
						r.Delete("/", s.deleteSource)
						r.Post("/retranscribe", s.retranscribe)
					})
				})
			})
		})

		r.Route("/capture", func(r chi.Router) {
			r.Post("/", s.captureMeeting)
			r.Get("/{sourceID}", s.captureStatus)
			r.Post("/{sourceID}/stop", s.stopCapture)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck // health response
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
